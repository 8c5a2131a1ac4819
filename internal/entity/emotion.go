package entity

import "strings"

type EmotionCategory string

const (
	EmotionAngry     EmotionCategory = "angry"
	EmotionContempt  EmotionCategory = "contempt"
	EmotionDisgust   EmotionCategory = "disgust"
	EmotionFear      EmotionCategory = "fear"
	EmotionHappy     EmotionCategory = "happy"
	EmotionNatural   EmotionCategory = "natural"
	EmotionSad       EmotionCategory = "sad"
	EmotionSleepy    EmotionCategory = "sleepy"
	EmotionSurprised EmotionCategory = "surprised"
)

// EmotionCategories is the class index order of the detection model. Ties between
// categories are always resolved by position in this slice.
var EmotionCategories = []EmotionCategory{
	EmotionAngry,
	EmotionContempt,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionNatural,
	EmotionSad,
	EmotionSleepy,
	EmotionSurprised,
}

// FallbackEmotion is used whenever a run has no usable signal or a lookup key is unknown.
const FallbackEmotion = EmotionNatural

func CategoryFromIndex(index int) (EmotionCategory, bool) {
	if index < 0 || index >= len(EmotionCategories) {
		return "", false
	}
	return EmotionCategories[index], true
}

func ParseEmotionCategory(s string) (EmotionCategory, bool) {
	c := EmotionCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

func (e EmotionCategory) IsValid() bool {
	return e.Index() >= 0
}

func (e EmotionCategory) Index() int {
	for i, c := range EmotionCategories {
		if c == e {
			return i
		}
	}
	return -1
}

// Title returns the label with its first letter upper-cased, e.g. "Surprised".
func (e EmotionCategory) Title() string {
	if e == "" {
		return ""
	}
	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

func (e EmotionCategory) String() string {
	return string(e)
}

type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Detection struct {
	ClassIndex int             `json:"class_id"`
	Category   EmotionCategory `json:"category"`
	Confidence float64         `json:"confidence"`
	Box        BoundingBox     `json:"bbox"`
}

type WeightTally map[EmotionCategory]float64

func NewWeightTally() WeightTally {
	return make(WeightTally, len(EmotionCategories))
}

func (t WeightTally) Total() float64 {
	var total float64
	for c, w := range t {
		if c.IsValid() {
			total += w
		}
	}
	return total
}

func (t WeightTally) Merge(other WeightTally) {
	for c, w := range other {
		if c.IsValid() {
			t[c] += w
		}
	}
}

func (t WeightTally) Clone() WeightTally {
	out := make(WeightTally, len(t))
	for c, w := range t {
		out[c] = w
	}
	return out
}

type PercentageDistribution map[EmotionCategory]float64

// ZeroDistribution carries every category with a 0 percentage.
func ZeroDistribution() PercentageDistribution {
	d := make(PercentageDistribution, len(EmotionCategories))
	for _, c := range EmotionCategories {
		d[c] = 0
	}
	return d
}

func (d PercentageDistribution) Sum() float64 {
	var sum float64
	for _, c := range EmotionCategories {
		sum += d[c]
	}
	return sum
}

func (d PercentageDistribution) Clone() PercentageDistribution {
	out := make(PercentageDistribution, len(d))
	for c, p := range d {
		out[c] = p
	}
	return out
}

type InputMode string

const (
	InputModeImage   InputMode = "Image"
	InputModeVideo   InputMode = "Video"
	InputModeWebcam  InputMode = "Live Webcam"
	InputModeText    InputMode = "Text Input"
	InputModeUnknown InputMode = "Unknown"
)
