package entity

type LandmarkName string

// Landmark names as produced by MediaPipe-style pose models. Only the shoulders and the right wrist are
// needed for measuring; the rest may appear in detector replies and are carried through untouched.
const (
	Nose          LandmarkName = "NOSE"
	LeftShoulder  LandmarkName = "LEFT_SHOULDER"
	RightShoulder LandmarkName = "RIGHT_SHOULDER"
	LeftElbow     LandmarkName = "LEFT_ELBOW"
	RightElbow    LandmarkName = "RIGHT_ELBOW"
	LeftWrist     LandmarkName = "LEFT_WRIST"
	RightWrist    LandmarkName = "RIGHT_WRIST"
	LeftHip       LandmarkName = "LEFT_HIP"
	RightHip      LandmarkName = "RIGHT_HIP"
	LeftKnee      LandmarkName = "LEFT_KNEE"
	RightKnee     LandmarkName = "RIGHT_KNEE"
	LeftAnkle     LandmarkName = "LEFT_ANKLE"
	RightAnkle    LandmarkName = "RIGHT_ANKLE"
)

// Landmark is a point in normalized image coordinates: X and Y are fractions of the image width and height,
// origin top-left.
type Landmark struct {
	X          float64 `json:"x" validate:"finite"`
	Y          float64 `json:"y" validate:"finite"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility,omitempty"`
	Presence   float64 `json:"presence,omitempty"`
}

// PoseLandmarks holds the landmarks of a single detected person.
type PoseLandmarks map[LandmarkName]Landmark

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToPixel scales a normalized landmark to an image of the given size.
func (l Landmark) ToPixel(width, height int) Point {
	return Point{
		X: l.X * float64(width),
		Y: l.Y * float64(height),
	}
}
