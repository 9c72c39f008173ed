package metrics

// Config holds configuration for metrics export.
type Config struct {
	// PushgatewayURL is the Pushgateway to push to after a run. Empty disables pushing.
	PushgatewayURL string `mapstructure:"pushgateway_url" default:"" validate:"omitempty,url"`
	// Job is the Pushgateway job label.
	Job string `mapstructure:"job" default:"tablesync"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"tablesync"`
}
