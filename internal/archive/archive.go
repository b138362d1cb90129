package archive

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// DefaultTenant is used when a request names none.
const DefaultTenant = "placeorder"

// CategoryDocuments is the product code every extracted image is filed under.
const CategoryDocuments = "documents"

// Submitter identifies who an archived document belongs to.
type Submitter struct {
	MobileNo    string `json:"mobile_no"`
	CompanyName string `json:"company_name"`
}

// Image is one file in a document bundle. Bytes travel base64 encoded.
type Image struct {
	Name  string `json:"image_name"`
	Type  string `json:"image_type"`
	Bytes []byte `json:"-"`
}

// MarshalJSON encodes Bytes as image_bytes.
func (i Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"image_name"`
		Type  string `json:"image_type"`
		Bytes string `json:"image_bytes"`
	}{
		Name:  i.Name,
		Type:  i.Type,
		Bytes: base64.StdEncoding.EncodeToString(i.Bytes),
	})
}

// Document groups images under a product code.
type Document struct {
	ProductCode string  `json:"product_code"`
	Images      []Image `json:"images"`
}

// Result maps each product code to the URLs the archive assigned.
type Result struct {
	URLs map[string][]string
}

// First returns the first URL filed under category.
func (r Result) First(category string) (string, bool) {
	urls := r.URLs[category]
	if len(urls) == 0 || urls[0] == "" {
		return "", false
	}
	return urls[0], true
}

// Archiver persists document images.
type Archiver interface {
	Store(ctx context.Context, submitter Submitter, docs []Document, tenant string) (Result, error)
}

func tenantOrDefault(tenant string) string {
	if tenant == "" {
		return DefaultTenant
	}
	return tenant
}
