package entities

// Signature formats for the generated documents. The format only influences
// the file-name extension; the signature itself is applied by the bridge.
const (
	SignatureCAdES   = "cades"
	SignatureXMLDSig = "xmldsig"
)

// Company carries the holder-side configuration every generated document
// embeds: the 8-character emission system code, the holder tax id, the
// business name and the activation card handed out by the authority.
type Company struct {
	CompanyID       string `json:"company_id" yaml:"company_id"`
	SystemCode      string `json:"system_code" yaml:"system_code"`
	TaxID           string `json:"tax_id" yaml:"tax_id"`
	BusinessName    string `json:"business_name" yaml:"business_name"`
	CardNumber      string `json:"card_number" yaml:"card_number"`
	SignatureFormat string `json:"signature_format" yaml:"signature_format"`
}
