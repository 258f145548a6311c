package content

// DefaultTree returns the built-in content shown before anything is saved.
// Each call returns fresh slices.
func DefaultTree() Tree {
	return Tree{
		GalleryImages: []GalleryImage{
			{ID: 1, URL: "/images/gallery/lake-dawn.jpg", Title: "Lake at dawn", Category: "grounds", Order: 0},
			{ID: 2, URL: "/images/gallery/great-room.jpg", Title: "The great room", Category: "interior", Order: 1},
			{ID: 3, URL: "/images/gallery/dining-terrace.jpg", Title: "Dining terrace", Category: "dining", Order: 2},
			{ID: 4, URL: "/images/gallery/cellar.jpg", Title: "Wine cellar", Category: "wine", Order: 3},
		},
		SectionBackgrounds: []SectionBackground{
			{Section: SectionHero, ImageURL: "/images/backgrounds/hero.jpg", Overlay: 0.35},
			{Section: SectionRooms, ImageURL: "/images/backgrounds/rooms.jpg", Overlay: 0.25},
			{Section: SectionDining, ImageURL: "/images/backgrounds/dining.jpg", Overlay: 0.3},
			{Section: SectionEvents, ImageURL: "/images/backgrounds/events.jpg", Overlay: 0.3},
		},
		WineCollection: []WineItem{
			{ID: 1, Name: "Estate Pinot Noir", Winery: "Stillwater Cellars", Region: "Willamette Valley", Vintage: "2021", Type: "red", Price: "$68"},
			{ID: 2, Name: "Reserve Chardonnay", Winery: "Stillwater Cellars", Region: "Sonoma Coast", Vintage: "2022", Type: "white", Price: "$54"},
		},
		Rooms: []Room{
			{
				ID: 1, Name: "Lakeside King", Price: "$420", Capacity: 2, Size: "420 sq ft",
				Description: "A king room opening onto the lake lawn.",
				Images:      []string{"/images/rooms/lakeside-king.jpg"},
				Amenities:   []string{"Fireplace", "Soaking tub", "Lake view"},
			},
			{
				ID: 2, Name: "Timber Suite", Price: "$640", Capacity: 4, Size: "780 sq ft",
				Description: "A two-room suite under the original timber frame.",
				Images:      []string{"/images/rooms/timber-suite.jpg"},
				Amenities:   []string{"Separate living room", "Balcony", "Wet bar"},
			},
			{
				ID: 3, Name: "Garden Queen", Price: "$340", Capacity: 2, Size: "360 sq ft",
				Description: "A quiet queen room facing the kitchen garden.",
				Images:      []string{"/images/rooms/garden-queen.jpg"},
				Amenities:   []string{"Garden patio", "Rain shower"},
			},
		},
		Events: []Event{
			{ID: 1, Title: "Winemaker dinner", Date: "Every second Friday", Time: "7:00 PM", Price: "$145", Description: "Five courses paired with the estate list."},
			{ID: 2, Title: "Lake yoga", Date: "Saturdays", Time: "8:00 AM", Description: "Morning practice on the dock."},
		},
		SiteContent: SiteContent{
			HeroTitle:    "Stillwater Lodge",
			HeroSubtitle: "A boutique hotel on the water",
			AboutTitle:   "About the lodge",
			AboutText:    "Twenty-two rooms, a wood-fired kitchen and a cellar built over four decades.",
			Address:      "1 Lakeshore Road",
			Phone:        "+1 555 0100",
			Email:        "stay@stillwaterlodge.com",
		},
	}
}
