// Package content holds the editable site content tree for one admin session,
// mirrors it to local persistent storage and exposes the mutations used by
// editing views.
//
// Every mutation produces a new Tree value; the previous value is never
// modified in place. Persistence is debounced and size-gated, and a failed
// write never rolls back the in-memory edit that triggered it.
package content

// Section names a page section that carries one background image.
type Section string

// The fixed set of sections with backgrounds.
const (
	SectionHero   Section = "hero"
	SectionRooms  Section = "rooms"
	SectionDining Section = "dining"
	SectionEvents Section = "events"
)

// Sections lists every Section in display order.
var Sections = []Section{SectionHero, SectionRooms, SectionDining, SectionEvents}

// GalleryImage is one photo in the gallery. Order mirrors array position.
type GalleryImage struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Category string `json:"category,omitempty"`
	Order    int    `json:"order"`
}

// SectionBackground is the backdrop of one page section.
type SectionBackground struct {
	Section  Section `json:"section"`
	ImageURL string  `json:"imageUrl"`
	Overlay  float64 `json:"overlay,omitempty"`
}

// WineItem is one bottle on the wine list.
type WineItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Winery      string `json:"winery,omitempty"`
	Region      string `json:"region,omitempty"`
	Vintage     string `json:"vintage,omitempty"`
	Type        string `json:"type,omitempty"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Room is a bookable room or suite.
type Room struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Capacity    int      `json:"capacity,omitempty"`
	Size        string   `json:"size,omitempty"`
	Images      []string `json:"images"`
	Amenities   []string `json:"amenities"`
}

// Event is a scheduled happening at the lodge.
type Event struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// SiteContent is the free-form site copy.
type SiteContent struct {
	HeroTitle    string `json:"heroTitle,omitempty"`
	HeroSubtitle string `json:"heroSubtitle,omitempty"`
	AboutTitle   string `json:"aboutTitle,omitempty"`
	AboutText    string `json:"aboutText,omitempty"`
	DiningText   string `json:"diningText,omitempty"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// IsZero reports whether no field of the site copy is set.
func (c SiteContent) IsZero() bool {
	return c == SiteContent{}
}

// Tree is the root aggregate of the content store.
type Tree struct {
	GalleryImages      []GalleryImage      `json:"galleryImages"`
	SectionBackgrounds []SectionBackground `json:"sectionBackgrounds"`
	WineCollection     []WineItem          `json:"wineCollection"`
	Rooms              []Room              `json:"rooms"`
	Events             []Event             `json:"events"`
	SiteContent        SiteContent         `json:"siteContent"`
}
