package seed

var firstNames = []string{
	"Aaliyah", "Aiden", "Amara", "Andre", "Beatriz", "Caleb", "Chen", "Chloe",
	"Dario", "Deepa", "Elena", "Emeka", "Farah", "Felix", "Grace", "Hamza",
	"Hana", "Isaac", "Ines", "Jamal", "Julia", "Kai", "Keiko", "Liam",
	"Lucia", "Malik", "Maya", "Mateo", "Nadia", "Noah", "Olga", "Omar",
	"Priya", "Quinn", "Rafael", "Rosa", "Samir", "Sofia", "Tariq", "Tessa",
	"Uma", "Victor", "Wen", "Xavier", "Yara", "Yusuf", "Zara", "Zoe",
}

var lastNames = []string{
	"Abbott", "Alvarez", "Bauer", "Bianchi", "Chang", "Costa", "Dubois", "Eriksen",
	"Fischer", "Garcia", "Gupta", "Haddad", "Hughes", "Ivanova", "Jensen", "Kim",
	"Kowalski", "Larsen", "Lopez", "Mensah", "Moreau", "Nakamura", "Novak", "Okafor",
	"Olsen", "Patel", "Petrov", "Quinn", "Rossi", "Santos", "Schmidt", "Silva",
	"Tanaka", "Torres", "Ueda", "Varga", "Walsh", "Wong", "Yilmaz", "Zhang",
}

var streetNames = []string{
	"Maple", "Oak", "Cedar", "Elm", "Willow", "Birch", "Pine", "Aspen",
	"Lincoln", "Washington", "Franklin", "Jefferson", "Madison", "Highland", "Lakeview", "Riverside",
	"Sunset", "Hillcrest", "Park", "Church", "Mill", "Spring", "Meadow", "Harbor",
}

var streetSuffixes = []string{"Street", "Avenue", "Road", "Lane", "Drive", "Court", "Way", "Boulevard"}

var cities = []string{
	"Springfield", "Riverton", "Fairview", "Georgetown", "Franklin", "Clinton", "Salem", "Madison",
	"Arlington", "Ashland", "Bristol", "Dover", "Greenville", "Hudson", "Kingston", "Lexington",
	"Marion", "Milton", "Newport", "Oxford", "Plymouth", "Richmond", "Trenton", "Winchester",
}

var states = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut", "Delaware",
	"Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas",
	"Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
	"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico", "New York",
	"North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington", "West Virginia",
	"Wisconsin", "Wyoming",
}

var institutionKinds = []string{"College", "School", "Institute"}

var subjectPrefixes = []string{"Computer", "Compiler", "Database"}

var subjectSuffixes = []string{"Systems", "Management", "Science", "Organization", "Security", "Networks", "Architecture"}

var languages = []string{"Python", "Haskell", "JavaScript", "Java", "C++", "C", "Perl", "SQL", "Ruby", "Scala", "F#", "C#", ".NET", "Go"}

var loremWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit",
	"sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore", "et",
	"dolore", "magna", "aliqua", "enim", "ad", "minim", "veniam", "quis",
	"nostrud", "exercitation", "ullamco", "laboris", "nisi", "aliquip", "ex", "ea",
	"commodo", "consequat", "duis", "aute", "irure", "in", "reprehenderit", "voluptate",
	"velit", "esse", "cillum", "fugiat", "nulla", "pariatur", "excepteur", "sint",
}
