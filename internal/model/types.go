package model

const (
	LabelNonJudi = "NON_JUDI"
	LabelJudi    = "JUDI"
	// LabelUnknown is reported for any class index outside the label table.
	LabelUnknown = "Tidak Dikenal"
)

var labels = map[int]string{
	0: LabelNonJudi,
	1: LabelJudi,
}

// LabelFor maps a class index to its label.
func LabelFor(index int) string {
	if label, ok := labels[index]; ok {
		return label
	}
	return LabelUnknown
}

// Metadata describes the ONNX graph signature. Every field has a default
// matching a DistilBERT sequence-classification export, so the metadata file
// is optional.
type Metadata struct {
	InputIDsName      string `json:"input_ids_name"`
	AttentionMaskName string `json:"attention_mask_name"`
	OutputName        string `json:"output_name"`
	NumClasses        int    `json:"num_classes"`
}

func DefaultMetadata() Metadata {
	return Metadata{
		InputIDsName:      "input_ids",
		AttentionMaskName: "attention_mask",
		OutputName:        "logits",
		NumClasses:        len(labels),
	}
}

type PredictionRequest struct {
	Text *string `json:"text"`
}

type PredictionResult struct {
	Classification  string  `json:"classification"`
	ConfidenceScore float64 `json:"confidenceScore"`
}
