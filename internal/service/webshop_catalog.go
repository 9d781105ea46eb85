package service

// WebshopCatalog the fixed webshop catalog seeded by the import command.
var WebshopCatalog = []CatalogEntry{
	{
		UUID:           "00e77558-78fe-41db-bd68-cdbc26f3de17",
		Name:           "Antwerpen Zwart Wit",
		Category:       "Book",
		Price:          "45.00",
		Description:    "Fotoboek met 182 pakkende zwart-witbeelden van Antwerpen (fin de siècle tot jaren 1990), gerangschikt per wijk met begeleidende toelichtingen door stadsgids Tanguy Ottomer.",
		AdditionalInfo: "Formaat 21,5×27 cm; 240 blz; hardcover (linnen rug); Nederlands; ISBN 9789460583926; Verschijningsdatum 25 november",
	},
	{
		UUID:           "06f563b8-6fbd-4431-8054-32972ef59e40",
		Name:           "Uitgaan in 't Stad van Vroeger",
		Category:       "Book",
		Price:          "21.95",
		Description:    "Boeiend boek over het uitgaansleven in het oude Antwerpen – van legendarische variététheaters en danszalen uit de jaren '20 tot de verdwenen bioscopen en clubs van latere decennia – een nostalgische terugblik op Antwerpens bruisende nachtleven.",
		AdditionalInfo: "Softcover; 176 blz; 17×22 cm; Nederlands; ISBN 9789460582875; verschenen okt 2015",
	},
	{
		UUID:           "139893ba-5942-4486-b4f4-3d03778cc2d8",
		Name:           "Ondernemen in 't Stad van Vroeger",
		Category:       "Book",
		Price:          "21.95",
		Description:    "Nostalgische ode aan Antwerpse bedrijven van weleer – verhalen van legendarische Antwerpse ondernemingen (zoals oude snoepfabrieken, koffiebranders, warenhuizen) en de gedreven ondernemers erachter, verzameld door Tanguy Ottomer.",
		AdditionalInfo: "Softcover; ~180 blz; Nederlands; reeks 't Stad van Vroeger deel 3 (nieuwe druk 2023)",
	},
	{
		UUID:           "17689fb6-ecfe-4f3a-b52e-083a93ac6b86",
		Name:           "50 Flemish Icons",
		Category:       "Book",
		Price:          "24.95",
		Description:    "Boek dat aan de hand van 50 typisch Vlaamse iconen de regio Vlaanderen belicht – van historische figuren en gebeurtenissen tot culinaire tradities en unieke innovaties – in 50 korte toegankelijke verhalen door stadsgids Tanguy Ottomer.",
		AdditionalInfo: "Tweetalige editie Nederlands & English (parallelle tekst)",
	},
	{
		UUID:           "2291d69f-ecb3-4ddf-bdee-c81f59a40a72",
		Name:           "Op Stap in Antwerpen",
		Category:       "Book",
		Price:          "19.95",
		Description:    "9 WANDELINGEN LANGS DE MOOISTE PLEKKEN VAN DE STAD AAN DE STAD STROOM - MET VERHALEN EN DE LEUKSTE ADRESSEN\n\nNa het succes van 'De stad van vroeger' I en II brengt de Beroepsantwerpenaar nu zijn beste wandelingen in boekvorm. Tanguy Ottomer leidt je in 9 thematische wandelingen met wegbeschrijvingen door zijn stad; er is o.a. een modewandeling, een wandeling met architecturale highlights, een wandeling over cafélegendes, en een waarin je ontdekt waarom Antwerpen 'de koekenstad' wordt genoemd. Bij elke stopplaats krijg je een korte uitleg, geschreven in Tanguy's eigenzinnige, spontane en enthousiaste stijl, en ook tips over waar je iets kunt gaan eten en drinken, of waar je leuke winkels vindt. Bij elke wandeling staat ook aangegeven hoe lang ze is, en een overzichtskaart toont welk deel van de stad wordt verkend. Als je geen live wandeling met de meest gepassioneerde gids van 't stad kunt meemaken, dan is dit boek, rijkelijk geïllustreerd met up-to-date foto's van Roel Hendrickx, the next best thing. Je begrijpt meteen waarom Tanguy Ottomer door CNN werd uitgeroepen tot 'one of the savviest tour guides in the world'.",
		AdditionalInfo: "",
	},
	{
		UUID:           "22d33401-6b30-4ebb-814b-843ef47a9b23",
		Name:           "Time Machine Gent",
		Category:       "Book",
		Price:          "24.95",
		Description:    "Fotoboek met 50 vóór & na-foto's van Gent – Tanguy Ottomer selecteerde oude foto's van de \"Stroppendragersstad\" en fotograaf Kevin Faingnaert legde dezelfde plekken vandaag vast – een uniek kijkboek vol nostalgie voor jong en oud.",
		AdditionalInfo: "Hardcover; 216 blz; 20×18,5 cm; tweetalig NL & EN; ISBN 9789460582936",
	},
	{
		UUID:           "354b683f-cfe8-4699-9faa-924282b4341a",
		Name:           "Nello & Patrasche (figurine groot)",
		Category:       "Merchandise",
		Price:          "29.95",
		Description:    "Decoratief beeldje van Nello & Patrasche – een symbolisch cadeautje dat vriendschap viert.",
		AdditionalInfo: "Lengte 25 cm; gewicht 700 g; materiaal 100% polyresin",
	},
	{
		UUID:           "37124cd2-128c-4c1e-b7d3-5bb0c2a8ebcb",
		Name:           "Van Manneke Pis tot de Betoverende Haas",
		Category:       "Book",
		Price:          "21.95",
		Description:    "Kinderboek met 20 spannende en grappige verhalen die kinderen door België voeren – van het geheim achter Manneken Pis tot betoverende legendes in dorpen – een nostalgische ontdekkingsreis door ons land.",
		AdditionalInfo: "Hardcover; 20 kortverhalen over Belgische legendes en geschiedenis; genomineerd Leesjury 2023-24",
	},
	{
		UUID:           "7dbaf3da-16cb-43e1-b005-c77ed42a14d4",
		Name:           "Nello & Patrasche",
		Category:       "Book",
		Price:          "15.99",
		Description:    "Heruitgave van het wereldberoemde verhaal over weesjongen Nello en zijn hond Patrasche in het Antwerpen van vroeger – een tijdloos kerstverhaal over vriendschap en hoop.",
		AdditionalInfo: "Tweede druk (herziene uitgave); Nederlands; geïllustreerd verhaal (klassieke novelle)",
	},
	{
		UUID:           "80d86651-ff35-45d2-be0e-750e3054b602",
		Name:           "'t Stad van Vroeger: Verdwenen parels van Antwerpen",
		Category:       "Book",
		Price:          "21.95",
		Description:    "Het eerste nostalgische foto- en verhalenboek van Tanguy Ottomer over de verdwenen parels van Antwerpen – verdwenen gebouwen, pleinen en standbeelden – enthousiast verteld en rijk geïllustreerd met uniek archiefmateriaal.",
		AdditionalInfo: "Softcover; 192 blz; 18×22 cm; Nederlands; ISBN 9789460581298; eerste druk 2014",
	},
	{
		UUID:           "84c7c7e3-e744-44f6-80df-b05c94e76fed",
		Name:           "Time Machine Antwerpen",
		Category:       "Book",
		Price:          "24.95",
		Description:    "Fotoboek \"Antwerp Then & Now\" met 50 verdwenen plekken in Antwerpen, getoond in historische foto's en hedendaagse tegenhangers – samengesteld door Tanguy Ottomer (fotografie Jeroen Verrecht) als eerbetoon aan de stad toen en nu.",
		AdditionalInfo: "Hardcover; 216 blz; 20×18 cm; tweetalig NL & EN; 2e druk 2021 (herziene editie)",
	},
	{
		UUID:           "87bb73b6-bcb2-430f-a16d-8d4b00c45779",
		Name:           "Knokke-Heist: Boulevard Nostalgie",
		Category:       "Book",
		Price:          "35.00",
		Description:    "Nostalgisch fotoboek over de gouden jaren van mondain Knokke-Heist, boordevol glamoureuze beelden en verrassende weetjes langs iconische locaties (casino, hotels, zeedijk, etc.), een feest voor het oog.",
		AdditionalInfo: "Hardcover; 176 blz; 23×16,5 cm; tweetalige editie NL–FR; ISBN 9789464941166",
	},
	{
		UUID:           "8aae10e6-3694-4800-8258-0429709e53b6",
		Name:           "Handelsbeurs Antwerpen: Past & Present",
		Category:       "Book",
		Price:          "45.00",
		Description:    "Luxueus salontafelboek over de bewogen geschiedenis van de Antwerpse Handelsbeurs – van gloriejaren als handelscentrum en feestlocatie tot de recente renovatie – rijk geïllustreerd en beschreven door Tanguy Ottomer.",
		AdditionalInfo: "Hardcover; ±250 blz; tweetalige editie NL & ENG; verschenen nov 2024; (gesigneerde exemplaren beschikbaar)",
	},
	{
		UUID:           "a92bd21e-6535-4007-8ab3-9a5a8e12cfa6",
		Name:           "Elixir d'Anvers",
		Category:       "Book",
		Price:          "39.95",
		Description:    "Exclusief salontafelboek over Elixir d'Anvers – de goudgele Antwerpse likeur – met rijke geschiedenis, uniek archiefmateriaal en verhalen van betrokken families en fans uit de gastronomie, door Tanguy Ottomer.",
		AdditionalInfo: "Hardcover; ruim geïllustreerd; tweetalige editie NL & ENG; ISBN 978946436... (2023)",
	},
	{
		UUID:           "b0767a90-4395-4bb6-a09d-51139461cf5d",
		Name:           "Time Machine Gent (Memoryspel)",
		Category:       "Game",
		Price:          "15.00",
		Description:    "Memoryspel met 60 foto-kaartjes van Gent vroeger en nu – herken jij de straten en pleinen van weleer? Combineer oude en nieuwe foto's en ga op een nostalgische zoektocht.",
		AdditionalInfo: "Taal NL & EN; 60 kaartjes; doosformaat 9,5×12×2,1 cm; ISBN 9789460582974",
	},
	{
		UUID:           "b25daa24-ac4f-4c84-8650-a572c6405768",
		Name:           "Nello & Patrasche (figurine klein)",
		Category:       "Merchandise",
		Price:          "14.95",
		Description:    "Ontroerend verhaal over weesjongen Nello en zijn trouwe hond Patrasche in 19e-eeuws Antwerpen, met een boodschap van trots en onvoorwaardelijke vriendschap.",
		AdditionalInfo: "Lengte 10 cm\n\nGewicht 117 gr\n\n100% polyresin",
	},
	{
		UUID:           "b4ba4a8a-5b34-4535-8700-5bdc448ee9f7",
		Name:           "Time Machine Antwerpen (Memory Game)",
		Category:       "Game",
		Price:          "15.00",
		Description:    "Memoryspel met 60 kaarten van Antwerpen – combineer oude stadsbeelden met nieuwe foto's en beleef een nostalgisch \"trip down memory lane\" in 't Stad terwijl je je geheugen test.",
		AdditionalInfo: "60 kaartjes; tweetalige NL/EN instructies; ISBN 9789460582776; gebaseerd op boek 'Time Machine – Antwerpen'",
	},
	{
		UUID:           "bd2cc2eb-e21b-4243-9ad6-f0e8dbc08219",
		Name:           "Antwerpen m'n Engeltje",
		Category:       "Book",
		Price:          "19.95",
		Description:    "Een bundel persoonlijke kortverhalen waarin Tanguy Ottomer het beruchte en bekende Antwerpen van vroeger doet herleven – een reeks anekdotische vertellingen met de stad als hoofdrolspeler.",
		AdditionalInfo: "Paperback; ca. 120 blz; Nederlands; verschenen 2018; korte verhalenbundel over Antwerpen",
	},
	{
		UUID:           "ccfe1afb-3bb0-4fb6-93f2-4472d4354af8",
		Name:           "De Boerentoren",
		Category:       "Book",
		Price:          "59.00",
		Description:    "Rijk geïllustreerd boek over de intrigerende geschiedenis van de Antwerpse Boerentoren – bijna 100 jaar hét icoon aan de skyline – met nieuwe verhalen en ongeziene beelden, gebaseerd op historisch onderzoek en unieke archieffoto's.",
		AdditionalInfo: "36×25,2 cm; ca. 320 blz; hardcover; Nederlandstalige editie; quadrichromie druk; ISBN 9789464366969",
	},
	{
		UUID:           "e58b7d59-6141-4dca-9b8d-95ad242a30e1",
		Name:           "Time Machine Brussels (Memory Game)",
		Category:       "Game",
		Price:          "15.00",
		Description:    "Memory-spel met 60 kaartjes van Brussel vroeger & nu – combineer recente foto's met archiefbeelden van dezelfde plek en test je geheugen met dit nostalgische spel.",
		AdditionalInfo: "60 kaarten; tweetalige handleiding NL & EN; gebaseerd op het boek 'Time Machine Brussels'; ISBN 9789460582998",
	},
	{
		UUID:           "e8b92e4e-051b-4848-916f-14a3479fd4b2",
		Name:           "Time Machine Brussels",
		Category:       "Book",
		Price:          "24.95",
		Description:    "Fotoboek met 50 unieke voor-en-na foto's van Brussel – historische beelden naast hedendaagse heropnames – samengesteld en toegelicht door Tanguy Ottomer (foto's Tim Fisher) als nostalgische ode aan de hoofdstad.",
		AdditionalInfo: "Hardcover; ±216 blz; 20×18 cm; drietalige editie NL/FR/EN; ISBN 9789460582981 (2021)",
	},
	{
		UUID:           "e921c2e9-d991-4827-8560-e3c342fff9bb",
		Name:           "Winkelen in 't Stad van Vroeger",
		Category:       "Book",
		Price:          "21.95",
		Description:    "Nostalgisch boek over de Antwerpse winkelcultuur van weleer – van de grandeur van de fin-de-siècle modepaleizen en warenhuizen tot de charme van buurtwinkels en veranderende winkelstraten in de 20e eeuw.",
		AdditionalInfo: "Softcover; 200 blz; 17×22 cm; Nederlands; ISBN 9789460582882; verschenen 11 dec 2021",
	},
}
