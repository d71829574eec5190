package labels

// NumClasses is the number of valid semantic classes. Valid semantic ids are in [0, NumClasses).
const NumClasses = 20

// Unannotated is the color of every point without a valid semantic class or instance.
var Unannotated = RGB{0, 0, 0}

// RGB is an 8 bit per channel color, in R, G, B order
type RGB = [3]uint8

// Class describes a semantic class: its name, the index the raw dataset uses for it
// and the color used to paint its points
type Class struct {
	ID       int32
	Name     string
	RawIndex int32
	Color    RGB
}

// ordered by semantic id, the position in each array is the id
var classNames = [NumClasses]string{
	"wall", "floor", "cabinet", "bed", "chair", "sofa", "table", "door", "window", "bookshelf",
	"picture", "counter", "desk", "curtain", "refridgerator", "shower curtain", "toilet", "sink", "bathtub", "otherfurniture",
}

var classRawIndexes = [NumClasses]int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 14, 16, 24, 28, 33, 34, 36, 39}

var classColors = [NumClasses]RGB{
	{171, 198, 230}, // wall
	{143, 223, 142}, // floor
	{0, 120, 177},   // cabinet
	{255, 188, 126}, // bed
	{189, 189, 57},  // chair
	{144, 86, 76},   // sofa
	{255, 152, 153}, // table
	{222, 40, 47},   // door
	{197, 176, 212}, // window
	{150, 103, 185}, // bookshelf
	{200, 156, 149}, // picture
	{0, 190, 206},   // counter
	{252, 183, 210}, // desk
	{219, 219, 146}, // curtain
	{255, 127, 43},  // refridgerator
	{150, 218, 228}, // shower curtain
	{0, 160, 55},    // toilet
	{110, 128, 143}, // sink
	{234, 119, 192}, // bathtub
	{80, 83, 160},   // otherfurniture
}

// Classes returns the semantic class table ordered by id
func Classes() []Class {
	classes := make([]Class, NumClasses)
	for i := range classes {
		classes[i] = Class{
			ID:       int32(i),
			Name:     classNames[i],
			RawIndex: classRawIndexes[i],
			Color:    classColors[i],
		}
	}
	return classes
}

// ClassByID returns the class with the given semantic id, ok is false if the id is not valid
func ClassByID(id int32) (Class, bool) {
	if !ValidSemantic(id) {
		return Class{}, false
	}
	return Class{ID: id, Name: classNames[id], RawIndex: classRawIndexes[id], Color: classColors[id]}, true
}

// ClassForRawIndex looks up a class by the index the raw dataset annotations use.
func ClassForRawIndex(raw int32) (Class, bool) {
	for i, r := range classRawIndexes {
		if r == raw {
			return ClassByID(int32(i))
		}
	}
	return Class{}, false
}

// SemanticColor returns the color of a semantic id, Unannotated for invalid ids
func SemanticColor(id int32) RGB {
	if !ValidSemantic(id) {
		return Unannotated
	}
	return classColors[id]
}
