package entity

// Measurement is the body estimate returned to clients, both values in centimeters rounded to one decimal.
type Measurement struct {
	ArmSize   float64 `json:"arm_size"`
	ChestSize float64 `json:"chest_size"`
}
