package venue

// builtinVenues is the venue table shipped with the binary, grouped by area.
var builtinVenues = []Entry{
	// Santa Barbara
	{Name: "Lobero Theatre", Address: "33 E Canon Perdido St, Santa Barbara, CA 93101"},
	{Name: "Granada Theater", Address: "1214 State St, Santa Barbara, CA 93101"},
	{Name: "Santa Barbara Bowl", Address: "1122 N Milpas St, Santa Barbara, CA 93103"},
	{Name: "The Red Piano", Address: "409 E Haley St, Santa Barbara, CA 93101"},
	{Name: "Soho", Address: "1221 State St, Santa Barbara, CA 93101"},
	{Name: "Miss Daisy's", Address: "324 State St, Santa Barbara, CA 93101"},
	{Name: "Corks & Crowns", Address: "3200 State St, Santa Barbara, CA 93105"},
	{Name: "Pali Wine Garden", Address: "1279 Coast Village Rd, Santa Barbara, CA 93108"},
	{Name: "Anchor Rose", Address: "15 E Ortega St, Santa Barbara, CA 93101"},
	{Name: "Night Lizard Brewing", Address: "2108 De la Vina St, Santa Barbara, CA 93105"},
	{Name: "Brewhouse", Address: "229 W Montecito St, Santa Barbara, CA 93101"},
	{Name: "M Special Brewing", Address: "3810 Carpinteria Ave, Carpinteria, CA 93013"},
	{Name: "Carrillo Ballroom", Address: "100 E Carrillo St, Santa Barbara, CA 93101"},
	{Name: "Whiskey Richards", Address: "3522 State St, Santa Barbara, CA 93105"},
	{Name: "Casa de la Guerra", Address: "15 E De La Guerra St, Santa Barbara, CA 93101"},
	{Name: "EOS Lounge", Address: "500 Anacapa St, Santa Barbara, CA 93101"},
	{Name: "Dargan's Irish Pub", Address: "18 E Ortega St, Santa Barbara, CA 93101"},
	{Name: "Villa Wine Bar", Address: "618 Anacapa St, Santa Barbara, CA 93101"},
	{Name: "Bobcat Room", Address: "11 W Ortega St, Santa Barbara, CA 93101"},
	{Name: "Wildcat Lounge", Address: "15 W Ortega St, Santa Barbara, CA 93101"},

	// Goleta / I.V.
	{Name: "Draughtsmen Aleworks", Address: "3455 Via Mercado, Santa Barbara, CA 93105"},
	{Name: "Samsara Wine Co.", Address: "7140 Hollister Ave, Goleta, CA 93117"},

	// Carpinteria
	{Name: "Corktree Cellars", Address: "1000 Via Rodeo, Carpinteria, CA 93013"},

	// Santa Ynez Valley
	{Name: "Firestone Vineyard", Address: "5000 Zaca Station Rd, Los Olivos, CA 93441"},
	{Name: "Gainey Vineyard", Address: "3950 E Hwy 246, Santa Ynez, CA 93460"},
	{Name: "Maverick Saloon", Address: "3687 Sagunto St, Santa Ynez, CA 93460"},
	{Name: "Carhartt Vineyard", Address: "2990 Grand Ave, Los Olivos, CA 93441"},

	// Solvang
	{Name: "Lost Chord Guitars", Address: "1664 Copenhagen Dr, Solvang, CA 93463"},
	{Name: "Solvang Theaterfest", Address: "420 2nd St, Solvang, CA 93463"},

	// Buellton
	{Name: "Vega Vineyard & Farm", Address: "9496 Santa Rosa Rd, Buellton, CA 93427"},
	{Name: "Brick Barn Wine Estate", Address: "795 Industrial Way, Buellton, CA 93427"},

	// Santa Maria
	{Name: "El Viñero", Address: "4444 Santa Maria Way, Santa Maria, CA 93455"},
	{Name: "Riverbench Vineyard", Address: "6020 Foxen Canyon Rd, Santa Maria, CA 93454"},
	{Name: "805 Charcuterie", Address: "1200 E Main St, Santa Maria, CA 93454"},
	{Name: "Costa de Oro Winery", Address: "1331 S Nicholson Ave, Santa Maria, CA 93454"},

	// Mountain
	{Name: "Cold Spring Tavern", Address: "5995 Stagecoach Rd, Santa Barbara, CA 93105"},
	{Name: "Hook'd Bar and Grill", Address: "9600 CA-154, Santa Barbara, CA 93105"},
}

// Builtin returns a new directory holding the built-in venue table.
func Builtin() *Directory {
	return New(builtinVenues...)
}
