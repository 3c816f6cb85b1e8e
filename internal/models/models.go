package models

// Dataset is one entry of the source catalog.
type Dataset struct {
	ID      string `json:"id" yaml:"id" validate:"required,max=64,excludesrune=/"`
	Name    string `json:"name" yaml:"name" validate:"required"`
	Source  string `json:"source" yaml:"source" validate:"required"`
	Default bool   `json:"default" yaml:"default"`
}

// DatasetList is what the catalog endpoint renders.
type DatasetList struct {
	Datasets []Dataset `json:"datasets"`
	Selected string    `json:"selected"`
}
