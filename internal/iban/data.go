package iban

// predefined holds syntactically valid test IBANs per country code.
// They are opaque strings; check digits are not validated.
var predefined = map[string][]string{
	"IT": {
		"IT60X0542811101000000123456", "IT12A0306912345100000067890",
		"IT75U0306909606100000012345", "IT33N0306909606100000065432",
	},
	"FR": {
		"FR1420041010050500013M02606", "FR7630006000011234567890189",
	},
	"DE": {
		"DE89370400440532013000", "DE02100100100006820101",
	},
	"LU": {
		"LU280019400644750000", "LU120010001234567891",
	},
}
