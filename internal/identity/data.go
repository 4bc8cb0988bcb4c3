package identity

import (
	"fmt"

	"github.com/zarlcorp/zprofile/internal/country"
)

type city struct {
	name string
	// postal is the fixed prefix of the postal code; the remainder is random.
	postal string
	// belfiore is the Italian cadastral municipality code used in tax ids.
	belfiore string
}

type localeData struct {
	maleNames   []string
	femaleNames []string
	lastNames   []string
	streets     []string
	cities      []city
	postalLen   int
	// streetFirst puts the house number after the street name.
	streetFirst bool
	phone       func() string
}

var locales = map[country.Code]localeData{
	country.IT: {
		maleNames: []string{
			"Marco", "Luca", "Giuseppe", "Alessandro", "Francesco", "Andrea", "Matteo",
			"Lorenzo", "Davide", "Simone", "Federico", "Stefano", "Paolo", "Giovanni",
			"Antonio", "Roberto", "Riccardo", "Fabio", "Claudio", "Emanuele",
		},
		femaleNames: []string{
			"Giulia", "Francesca", "Chiara", "Sara", "Martina", "Valentina", "Alessia",
			"Elena", "Federica", "Silvia", "Laura", "Paola", "Roberta", "Anna",
			"Beatrice", "Elisa", "Giorgia", "Alice", "Sofia", "Camilla",
		},
		lastNames: []string{
			"Rossi", "Russo", "Ferrari", "Esposito", "Bianchi", "Romano", "Colombo",
			"Ricci", "Marino", "Greco", "Bruno", "Gallo", "Conti", "De Luca",
			"Mancini", "Costa", "Giordano", "Rizzo", "Lombardi", "Moretti",
		},
		streets: []string{
			"Via Roma", "Via Garibaldi", "Via Mazzini", "Corso Italia", "Via Dante",
			"Via Verdi", "Piazza della Repubblica", "Via Cavour", "Viale Europa",
			"Via Marconi", "Via XX Settembre", "Corso Vittorio Emanuele",
		},
		cities: []city{
			{"Roma", "001", "H501"}, {"Milano", "201", "F205"}, {"Napoli", "801", "F839"},
			{"Torino", "101", "L219"}, {"Firenze", "501", "D612"}, {"Bologna", "401", "A944"},
			{"Genova", "161", "D969"}, {"Palermo", "901", "G273"}, {"Venezia", "301", "L736"},
			{"Bari", "701", "A662"}, {"Verona", "371", "L781"}, {"Catania", "951", "C351"},
		},
		postalLen:   5,
		streetFirst: true,
		phone: func() string {
			return fmt.Sprintf("+39 3%02d %03d %04d", randIntn(100), randIntn(1000), randIntn(10000))
		},
	},
	country.FR: {
		maleNames: []string{
			"Jean", "Pierre", "Nicolas", "Julien", "Thomas", "Antoine", "Maxime",
			"Alexandre", "Hugo", "Louis", "Lucas", "Mathieu", "Olivier", "Philippe",
			"Sébastien", "Vincent", "Guillaume", "Romain", "Baptiste", "Clément",
		},
		femaleNames: []string{
			"Marie", "Camille", "Léa", "Manon", "Chloé", "Sophie", "Julie", "Emma",
			"Claire", "Céline", "Aurélie", "Nathalie", "Isabelle", "Charlotte",
			"Pauline", "Sarah", "Laura", "Inès", "Océane", "Margaux",
		},
		lastNames: []string{
			"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit",
			"Durand", "Leroy", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel",
			"Garcia", "David", "Bertrand", "Roux", "Vincent", "Fournier",
		},
		streets: []string{
			"rue de la Paix", "avenue des Champs-Élysées", "boulevard Saint-Michel",
			"rue Victor Hugo", "rue de la République", "place de la Mairie",
			"rue du Général de Gaulle", "avenue Jean Jaurès", "rue Pasteur",
			"rue des Écoles", "boulevard Voltaire", "rue Nationale",
		},
		cities: []city{
			{"Paris", "750", ""}, {"Lyon", "690", ""}, {"Marseille", "130", ""},
			{"Toulouse", "310", ""}, {"Nice", "060", ""}, {"Nantes", "440", ""},
			{"Strasbourg", "670", ""}, {"Montpellier", "340", ""}, {"Bordeaux", "330", ""},
			{"Lille", "590", ""}, {"Rennes", "350", ""}, {"Reims", "511", ""},
		},
		postalLen: 5,
		phone: func() string {
			return fmt.Sprintf("+33 %d %02d %02d %02d %02d",
				6+randIntn(2), randIntn(100), randIntn(100), randIntn(100), randIntn(100))
		},
	},
	country.DE: {
		maleNames: []string{
			"Lukas", "Jonas", "Leon", "Felix", "Maximilian", "Paul", "Tim", "Jan",
			"Niklas", "Florian", "Tobias", "Stefan", "Michael", "Andreas", "Thomas",
			"Matthias", "Sebastian", "Christian", "Markus", "Jürgen",
		},
		femaleNames: []string{
			"Anna", "Lena", "Laura", "Julia", "Hannah", "Lea", "Sarah", "Lisa",
			"Katharina", "Johanna", "Sophie", "Marie", "Sabine", "Petra", "Claudia",
			"Andrea", "Monika", "Ursula", "Birgit", "Jana",
		},
		lastNames: []string{
			"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner",
			"Becker", "Schulz", "Hoffmann", "Schäfer", "Koch", "Bauer", "Richter",
			"Klein", "Wolf", "Schröder", "Neumann", "Schwarz", "Zimmermann",
		},
		streets: []string{
			"Hauptstraße", "Schulstraße", "Gartenstraße", "Bahnhofstraße", "Dorfstraße",
			"Bergstraße", "Birkenweg", "Lindenstraße", "Kirchstraße", "Waldstraße",
			"Ringstraße", "Goethestraße",
		},
		cities: []city{
			{"Berlin", "101", ""}, {"Hamburg", "201", ""}, {"München", "803", ""},
			{"Köln", "506", ""}, {"Frankfurt am Main", "603", ""}, {"Stuttgart", "701", ""},
			{"Düsseldorf", "402", ""}, {"Leipzig", "041", ""}, {"Dortmund", "441", ""},
			{"Essen", "451", ""}, {"Bremen", "281", ""}, {"Dresden", "010", ""},
		},
		postalLen:   5,
		streetFirst: true,
		phone: func() string {
			prefixes := []string{"151", "152", "160", "170", "171", "176", "178"}
			return fmt.Sprintf("+49 %s %07d", pick(prefixes), randIntn(10000000))
		},
	},
	country.LU: {
		maleNames: []string{
			"Luc", "Marc", "Paul", "Jean", "Gilles", "Laurent", "Patrick", "Yves",
			"Tom", "Ben", "Max", "Claude", "Georges", "Michel", "Serge", "Pol",
			"Mathis", "Noah", "Gabriel", "Léon",
		},
		femaleNames: []string{
			"Anne", "Claudine", "Sandra", "Nathalie", "Carole", "Sophie", "Mia",
			"Emma", "Léa", "Chloé", "Sarah", "Lara", "Joëlle", "Martine", "Nadine",
			"Tania", "Michèle", "Isabelle", "Lynn", "Julie",
		},
		lastNames: []string{
			"Schmit", "Muller", "Weber", "Wagner", "Hoffmann", "Thill", "Schmitz",
			"Klein", "Becker", "Kieffer", "Reuter", "Schiltz", "Majerus", "Welter",
			"Kremer", "Meyer", "Steichen", "Faber", "Weis", "Hansen",
		},
		streets: []string{
			"rue de la Gare", "avenue de la Liberté", "rue Principale", "rue de l'Église",
			"Grand-Rue", "boulevard Royal", "rue du Marché", "route d'Arlon",
			"rue des Jardins", "avenue Monterey", "rue de Luxembourg", "rue du Moulin",
		},
		cities: []city{
			{"Luxembourg", "L-16", ""}, {"Esch-sur-Alzette", "L-40", ""},
			{"Differdange", "L-45", ""}, {"Dudelange", "L-34", ""},
			{"Ettelbruck", "L-90", ""}, {"Diekirch", "L-92", ""},
			{"Wiltz", "L-95", ""}, {"Echternach", "L-64", ""},
			{"Remich", "L-55", ""}, {"Mersch", "L-75", ""},
		},
		postalLen: 6,
		phone: func() string {
			prefixes := []string{"621", "628", "661", "671", "691"}
			return fmt.Sprintf("+352 %s %03d %03d", pick(prefixes), randIntn(1000), randIntn(1000))
		},
	},
}
