package rekognition

// Config holds configuration for the AWS Rekognition detector
type Config struct {
	// Region is the AWS region where Rekognition will be used (e.g., "us-east-1")
	Region string

	// MinConfidence is the minimum confidence (0-100) for a face or label
	// detection to count.
	MinConfidence float32

	// MaxYawDegrees is the head yaw beyond which the candidate counts as
	// looking away from the screen.
	MaxYawDegrees float64

	// MaxPitchDegrees is the head pitch beyond which the candidate counts
	// as looking away.
	MaxPitchDegrees float64

	// SuspiciousLabels are the object labels that qualify as a violation
	// when seen in a frame.
	SuspiciousLabels []string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:          "us-east-1",
		MinConfidence:   80,
		MaxYawDegrees:   35,
		MaxPitchDegrees: 25,
		SuspiciousLabels: []string{
			"Mobile Phone",
			"Cell Phone",
			"Tablet Computer",
			"Laptop",
			"Book",
			"Headphones",
		},
	}
}
