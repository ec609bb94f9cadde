// pkg/world/tuning.go
package world

// Tuning holds the solver constants
type Tuning struct {
	Gravity            float32 `json:"gravity"`
	LinkStiffness      float32 `json:"link_stiffness"`
	RopeStiffness      float32 `json:"rope_stiffness"`
	SpringPositionGain float32 `json:"spring_position_gain"`
	SpringVelocityGain float32 `json:"spring_velocity_gain"`
	RotorGain          float32 `json:"rotor_gain"`
	// MinDistance clamps pair distances before normalizing
	MinDistance float32 `json:"min_distance"`
}

// DefaultRadius is the node radius of a new world
const DefaultRadius float32 = 0.05

// DefaultTuning returns the stock solver constants
func DefaultTuning() Tuning {
	return Tuning{
		Gravity:            6,
		LinkStiffness:      32,
		RopeStiffness:      16,
		SpringPositionGain: 8,
		SpringVelocityGain: 512,
		RotorGain:          64,
		MinDistance:        1e-6,
	}
}
