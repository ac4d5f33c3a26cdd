package models

type GalleryItem struct {
	Meta    `mapstructure:",squash"`
	URL     string `mapstructure:"url" json:"url"`
	Caption string `mapstructure:"caption" json:"caption"`
	// Key is set when the image was uploaded to object storage.
	Key string `mapstructure:"key" json:"key,omitempty"`
}
