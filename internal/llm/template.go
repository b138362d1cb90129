package llm

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"text/template"
)

// Template keys returned by every provider, in prompt order.
const (
	KeyDocID       = "doc_id"
	KeyDocType     = "doc_type"
	KeyFullName    = "full_name"
	KeyFathersName = "fathers_name"
	KeyAddress     = "address"
	KeyDOB         = "dob"
	KeyFileType    = "file_type"
)

// Document type vocabulary.
const (
	DocTypePAN     = "PAN CARD"
	DocTypeAadhaar = "AADHAAR CARD"
	DocTypeUnknown = "NA"
)

// TemplateKeys lists the keys the model is asked to fill.
var TemplateKeys = []string{KeyDocID, KeyDocType, KeyFullName, KeyFathersName, KeyAddress, KeyDOB}

//go:embed prompts/extract.tmpl
var extractPrompt string

var instructionTmpl = template.Must(template.New("extract").Parse(extractPrompt))

// Template returns a fresh all-empty field set.
func Template() Fields {
	out := make(Fields, len(TemplateKeys))
	for _, k := range TemplateKeys {
		out[k] = ""
	}
	return out
}

// Instruction renders the extraction prompt sent alongside every image.
func Instruction() string {
	var b bytes.Buffer
	err := instructionTmpl.Execute(&b, struct {
		Template   string
		DocTypes   []string
		Unknown    string
		DateFormat string
	}{
		Template:   templateJSON(),
		DocTypes:   []string{DocTypePAN, DocTypeAadhaar},
		Unknown:    DocTypeUnknown,
		DateFormat: "YYYY-MM-DD",
	})
	if err != nil {
		panic(err)
	}
	return b.String()
}

// templateJSON keeps TemplateKeys order, which a map would not.
func templateJSON() string {
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range TemplateKeys {
		key, _ := json.Marshal(k)
		b.WriteString("  ")
		b.Write(key)
		b.WriteString(`: ""`)
		if i < len(TemplateKeys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}
