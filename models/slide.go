package models

// Slide is one hero carousel entry.
type Slide struct {
	ImageURL string `yaml:"image_url" json:"image_url"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
	Link     string `yaml:"link" json:"link"`
	Alt      string `yaml:"alt" json:"alt"`
}
