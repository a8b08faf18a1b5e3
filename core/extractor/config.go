package extractor

// Config holds configuration for the document extractor.
type Config struct {
	// ProjectID is the Google Cloud project hosting Vertex AI.
	ProjectID string `mapstructure:"project_id" default:""`
	// Region is the Vertex AI location.
	Region string `mapstructure:"region" default:"us-central1" validate:"required"`
	// Model is the Gemini model name.
	Model string `mapstructure:"model" default:"gemini-2.5-flash" validate:"required"`
	// CredentialsFile is an optional service account key. Application
	// default credentials are used when empty.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
	// TimeoutSeconds bounds a single extraction call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60" validate:"gte=1"`
	// MaxImageEdge is the longest edge in pixels sent to the model; larger
	// photos are downscaled first. 0 sends images as uploaded.
	MaxImageEdge int `mapstructure:"max_image_edge" default:"2048" validate:"gte=0"`
	// Concurrency caps parallel sticker extractions in a batch.
	Concurrency int `mapstructure:"concurrency" default:"4" validate:"gte=1,lte=32"`
}

// Enabled reports whether enough is configured to reach the model.
func (c Config) Enabled() bool {
	return c.ProjectID != "" && c.Region != ""
}
