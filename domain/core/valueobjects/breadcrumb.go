package valueobjects

// Breadcrumb is one entry of the navigation trail
type Breadcrumb struct {
	ID   BankID `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
