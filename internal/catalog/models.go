package catalog

import "fmt"

// Cosmetic is one battle-royale cosmetic as returned by the catalog.
type Cosmetic struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        TypeInfo      `json:"type"`
	Rarity      RarityInfo    `json:"rarity"`
	Series      *SeriesInfo   `json:"series"`
	Images      CosmeticImage `json:"images"`
	Added       string        `json:"added"`
}

// TypeInfo is the cosmetic's backend type tag.
type TypeInfo struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
	BackendValue string `json:"backendValue"`
}

// RarityInfo is the cosmetic's rarity tag.
type RarityInfo struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
	BackendValue string `json:"backendValue"`
}

// SeriesInfo is the cosmetic's series tag, when it belongs to one.
type SeriesInfo struct {
	Value        string `json:"value"`
	BackendValue string `json:"backendValue"`
}

// CosmeticImage holds the catalog's icon URLs for a cosmetic.
type CosmeticImage struct {
	SmallIcon string `json:"smallIcon"`
	Icon      string `json:"icon"`
	Featured  string `json:"featured"`
}

// Banner is one entry of the full banner list. Banners carry no native
// rarity.
type Banner struct {
	ID          string        `json:"id"`
	DevName     string        `json:"devName"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Images      CosmeticImage `json:"images"`
}

// cosmeticsResponse is the envelope of the cosmetic search endpoints.
type cosmeticsResponse struct {
	Status int        `json:"status"`
	Data   []Cosmetic `json:"data"`
}

// bannersResponse is the envelope of the banner list endpoint.
type bannersResponse struct {
	Status int      `json:"status"`
	Data   []Banner `json:"data"`
}

// APIError represents an error response from the catalog API.
type APIError struct {
	Status int    `json:"status"`
	Err    string `json:"error"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error (status %d): %s", e.Status, e.Err)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.URL)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}
