package models

// Categories is the compiled-in category vocabulary.
var Categories = []string{
	"Action",
	"Adventure",
	"Comedy",
	"Drama",
	"Fantasy",
	"Historical",
	"Horror",
	"Isekai",
	"Martial Arts",
	"Mecha",
	"Mystery",
	"Psychological",
	"Romance",
	"School Life",
	"Sci-Fi",
	"Slice of Life",
	"Sports",
	"Supernatural",
	"Thriller",
	"Tragedy",
}

// FallbackTags keeps the tag controls populated when no item carries tags.
var FallbackTags = []string{
	"Magic",
	"Reincarnation",
	"Villainess",
	"Dungeons",
	"Cultivation",
	"Time Travel",
	"Revenge",
	"Found Family",
}

// Release formats an item may be published in.
const (
	FormatWeb        = "web"
	FormatPrint      = "print"
	FormatColor      = "color"
	FormatOneshot    = "oneshot"
	FormatCollection = "collection"
	FormatYonkoma    = "4-koma"
)

var ReleaseFormats = []string{
	FormatWeb, FormatPrint, FormatColor, FormatOneshot, FormatCollection, FormatYonkoma,
}

// Library lists a reader can file a title under. They surface on items as UserListFlags.
const (
	ListReading   = "reading"
	ListCompleted = "completed"
	ListWishList  = "wish_list"
	ListBlacklist = "blacklist"
)

var UserLists = []string{ListReading, ListCompleted, ListWishList, ListBlacklist}
