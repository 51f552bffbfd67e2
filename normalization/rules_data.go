package normalization

// Built-in rule tables for Polish grocery receipts. Keys are matching keys:
// lowercase, diacritics folded, size and price fragments already stripped by
// the cleanup stage. Canonical names keep their Polish spelling.

type exactRule struct {
	key       string
	canonical string
}

type wordRule struct {
	word      string
	canonical string
}

type partialRule struct {
	fragment  string
	canonical string
}

type storeVariantRule struct {
	store     string
	pattern   string
	canonical string
}

var exactNameRules = []exactRule{
	// dairy and eggs
	{"mleko", "Mleko"},
	{"mleko laciate", "Mleko"},
	{"mleko czekoladowe", "Mleko czekoladowe"},
	{"maslo", "Masło"},
	{"maslo extra", "Masło"},
	{"ser zolty", "Ser żółty"},
	{"ser bialy", "Twaróg"},
	{"twarog", "Twaróg"},
	{"twarog polturysty", "Twaróg"},
	{"jogurt", "Jogurt"},
	{"jogurt naturalny", "Jogurt naturalny"},
	{"jogurt grecki", "Jogurt grecki"},
	{"jogurt owocowy", "Jogurt owocowy"},
	{"kefir", "Kefir"},
	{"maslanka", "Maślanka"},
	{"smietana", "Śmietana"},
	{"smietanka", "Śmietanka"},
	{"serek wiejski", "Serek wiejski"},
	{"serek homogenizowany", "Serek homogenizowany"},
	{"jaja", "Jajka"},
	{"jajka", "Jajka"},
	{"mozzarella", "Mozzarella"},
	{"feta", "Feta"},

	// bread and bakery
	{"chleb", "Chleb"},
	{"chleb wiejski", "Chleb"},
	{"chleb razowy", "Chleb razowy"},
	{"chleb tostowy", "Chleb tostowy"},
	{"bulka", "Bułka"},
	{"bulki", "Bułka"},
	{"bulka kajzerka", "Bułka"},
	{"bagietka", "Bagietka"},
	{"rogal", "Rogal"},
	{"chalka", "Chałka"},
	{"paczek", "Pączek"},
	{"drozdzowka", "Drożdżówka"},

	// meat and cold cuts
	{"kurczak", "Kurczak"},
	{"filet z kurczaka", "Filet z kurczaka"},
	{"filet z piersi kurczaka", "Filet z kurczaka"},
	{"udka z kurczaka", "Udka z kurczaka"},
	{"szynka", "Szynka"},
	{"szynka konserwowa", "Szynka konserwowa"},
	{"kielbasa", "Kiełbasa"},
	{"kielbasa slaska", "Kiełbasa śląska"},
	{"parowki", "Parówki"},
	{"boczek", "Boczek"},
	{"schab", "Schab"},
	{"karkowka", "Karkówka"},
	{"mieso mielone", "Mięso mielone"},
	{"mielone", "Mięso mielone"},
	{"salami", "Salami"},
	{"poledwica", "Polędwica"},
	{"kabanosy", "Kabanosy"},

	// fish
	{"losos", "Łosoś"},
	{"tunczyk", "Tuńczyk"},
	{"sledz", "Śledź"},
	{"makrela", "Makrela"},
	{"paluszki rybne", "Paluszki rybne"},

	// fruit
	{"banany", "Banany"},
	{"banan", "Banany"},
	{"jablka", "Jabłka"},
	{"jablko", "Jabłka"},
	{"pomarancze", "Pomarańcze"},
	{"cytryny", "Cytryny"},
	{"winogrona", "Winogrona"},
	{"truskawki", "Truskawki"},
	{"borowki", "Borówki"},
	{"maliny", "Maliny"},
	{"gruszki", "Gruszki"},
	{"sliwki", "Śliwki"},
	{"brzoskwinie", "Brzoskwinie"},
	{"nektarynki", "Nektarynki"},
	{"arbuz", "Arbuz"},
	{"mandarynki", "Mandarynki"},
	{"kiwi", "Kiwi"},
	{"awokado", "Awokado"},
	{"ananas", "Ananas"},

	// vegetables
	{"pomidory", "Pomidory"},
	{"pomidor", "Pomidory"},
	{"pomidory malinowe", "Pomidory"},
	{"ogorki", "Ogórki"},
	{"ogorek", "Ogórki"},
	{"ziemniaki", "Ziemniaki"},
	{"cebula", "Cebula"},
	{"marchew", "Marchew"},
	{"papryka", "Papryka"},
	{"salata", "Sałata"},
	{"kapusta", "Kapusta"},
	{"brokul", "Brokuły"},
	{"kalafior", "Kalafior"},
	{"cukinia", "Cukinia"},
	{"pieczarki", "Pieczarki"},
	{"czosnek", "Czosnek"},
	{"por", "Por"},
	{"buraki", "Buraki"},
	{"rzodkiewka", "Rzodkiewka"},
	{"szpinak", "Szpinak"},
	{"koperek", "Koperek"},
	{"pietruszka", "Pietruszka"},

	// drinks
	{"woda", "Woda"},
	{"woda mineralna", "Woda mineralna"},
	{"woda gazowana", "Woda gazowana"},
	{"woda niegazowana", "Woda niegazowana"},
	{"sok", "Sok"},
	{"sok pomaranczowy", "Sok pomarańczowy"},
	{"sok jablkowy", "Sok jabłkowy"},
	{"piwo", "Piwo"},
	{"wino", "Wino"},
	{"herbata", "Herbata"},
	{"herbata czarna", "Herbata czarna"},
	{"herbata zielona", "Herbata zielona"},
	{"kawa", "Kawa"},
	{"kawa mielona", "Kawa mielona"},
	{"kawa ziarnista", "Kawa ziarnista"},
	{"kawa rozpuszczalna", "Kawa rozpuszczalna"},
	{"napoj", "Napój"},
	{"energetyk", "Napój energetyczny"},

	// pantry staples
	{"maka", "Mąka"},
	{"maka pszenna", "Mąka"},
	{"cukier", "Cukier"},
	{"sol", "Sól"},
	{"ryz", "Ryż"},
	{"makaron", "Makaron"},
	{"kasza", "Kasza"},
	{"kasza gryczana", "Kasza gryczana"},
	{"platki owsiane", "Płatki owsiane"},
	{"platki", "Płatki śniadaniowe"},
	{"musli", "Musli"},
	{"olej", "Olej"},
	{"olej rzepakowy", "Olej"},
	{"oliwa", "Oliwa z oliwek"},
	{"oliwa z oliwek", "Oliwa z oliwek"},
	{"ocet", "Ocet"},
	{"margaryna", "Margaryna"},
	{"drozdze", "Drożdże"},

	// sauces and condiments
	{"ketchup", "Ketchup"},
	{"majonez", "Majonez"},
	{"musztarda", "Musztarda"},
	{"pieprz", "Pieprz"},
	{"papryka slodka", "Papryka słodka"},
	{"sos", "Sos"},
	{"passata", "Passata pomidorowa"},
	{"koncentrat pomidorowy", "Koncentrat pomidorowy"},

	// canned and preserved
	{"kukurydza", "Kukurydza"},
	{"groszek", "Groszek"},
	{"fasola", "Fasola"},
	{"ogorki kiszone", "Ogórki kiszone"},
	{"kapusta kiszona", "Kapusta kiszona"},
	{"dzem", "Dżem"},
	{"miod", "Miód"},
	{"maslo orzechowe", "Masło orzechowe"},
	{"hummus", "Hummus"},

	// sweets and snacks
	{"czekolada", "Czekolada"},
	{"czekolada mleczna", "Czekolada mleczna"},
	{"czekolada gorzka", "Czekolada gorzka"},
	{"baton", "Baton"},
	{"ciastka", "Ciastka"},
	{"herbatniki", "Herbatniki"},
	{"wafle", "Wafle"},
	{"zelki", "Żelki"},
	{"cukierki", "Cukierki"},
	{"lody", "Lody"},
	{"chipsy", "Chipsy"},
	{"paluszki", "Paluszki"},
	{"krakersy", "Krakersy"},
	{"orzeszki", "Orzeszki"},
	{"popcorn", "Popcorn"},

	// frozen and ready meals
	{"pizza", "Pizza"},
	{"pierogi", "Pierogi"},
	{"pierogi ruskie", "Pierogi ruskie"},
	{"frytki", "Frytki"},

	// household and personal care
	{"papier toaletowy", "Papier toaletowy"},
	{"reczniki papierowe", "Ręczniki papierowe"},
	{"recznik papierowy", "Ręczniki papierowe"},
	{"plyn do naczyn", "Płyn do naczyń"},
	{"proszek do prania", "Proszek do prania"},
	{"mydlo", "Mydło"},
	{"szampon", "Szampon"},
	{"pasta do zebow", "Pasta do zębów"},
	{"worki na smieci", "Worki na śmieci"},
	{"chusteczki", "Chusteczki"},
}

var wordRules = []wordRule{
	// product heads that survive extra descriptors around them
	{"mleko", "Mleko"},
	{"maslo", "Masło"},
	{"chleb", "Chleb"},
	{"bulka", "Bułka"},
	{"jogurt", "Jogurt"},
	{"kefir", "Kefir"},
	{"smietana", "Śmietana"},
	{"szynka", "Szynka"},
	{"kielbasa", "Kiełbasa"},
	{"kurczak", "Kurczak"},
	{"woda", "Woda"},
	{"sok", "Sok"},
	{"piwo", "Piwo"},
	{"wino", "Wino"},
	{"kawa", "Kawa"},
	{"herbata", "Herbata"},
	{"makaron", "Makaron"},
	{"czekolada", "Czekolada"},

	// dairy brands
	{"laciate", "Mleko"},
	{"wypasione", "Mleko"},
	{"mlekovita", "Mleko"},
	{"piatnica", "Śmietana"},
	{"danone", "Jogurt"},
	{"activia", "Jogurt"},
	{"bakoma", "Jogurt"},
	{"zott", "Jogurt"},
	{"hochland", "Ser żółty"},

	// drink brands
	{"lipton", "Herbata"},
	{"tymbark", "Sok"},
	{"hortex", "Sok"},
	{"kubus", "Sok"},
	{"zywiec zdroj", "Woda"},
	{"cisowianka", "Woda"},
	{"naleczowianka", "Woda"},
	{"muszynianka", "Woda"},
	{"coca cola", "Napój gazowany"},
	{"pepsi", "Napój gazowany"},
	{"sprite", "Napój gazowany"},
	{"fanta", "Napój gazowany"},
	{"red bull", "Napój energetyczny"},
	{"tiger", "Napój energetyczny"},

	// beer brands, after zywiec zdroj by specificity
	{"tyskie", "Piwo"},
	{"okocim", "Piwo"},
	{"harnas", "Piwo"},
	{"carlsberg", "Piwo"},
	{"heineken", "Piwo"},
	{"zywiec", "Piwo"},

	// sweets and condiment brands
	{"milka", "Czekolada"},
	{"wedel", "Czekolada"},
	{"wawel", "Czekolada"},
	{"winiary", "Majonez"},
	{"pudliszki", "Ketchup"},
	{"kotlin", "Ketchup"},
}

var partialRules = []partialRule{
	{"pomidor", "Pomidory"},
	{"ogork", "Ogórki"},
	{"jablk", "Jabłka"},
	{"mlek", "Mleko"},
	{"czekolad", "Czekolada"},
	{"kurcz", "Kurczak"},
	{"ziemniak", "Ziemniaki"},
	{"truskawk", "Truskawki"},
	{"banan", "Banany"},
	{"cytryn", "Cytryny"},
	{"marchewk", "Marchew"},
	{"jogurt", "Jogurt"},
	{"parowk", "Parówki"},
	{"serek", "Serek wiejski"},
	{"herbat", "Herbata"},
}

var storeVariantRules = []storeVariantRule{
	{"Lidl", "pilos", "Nabiał"},
	{"Lidl", "milbona", "Nabiał"},
	{"Lidl", "pikok", "Wędlina"},
	{"Biedronka", "mleczna dolina", "Nabiał"},
	{"Biedronka", "kraina wedlin", "Wędlina"},
	{"Żabka", "szybka micha", "Danie gotowe"},
	{"Żabka", "tomcio paluch", "Pieczywo"},
	{"Kaufland", "bevola", "Kosmetyki"},
}
