package ipreputation

// Verdict is the answer of one reputation source for one IP.
type Verdict struct {
	Source   string `bson:"source" json:"source"`
	Detected bool   `bson:"detected" json:"detected"`
	Reason   string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Assessment combines the verdicts of all sources that answered. Confidence is
// the share of positive verdicts among answered sources, in percent.
type Assessment struct {
	Suspected  bool      `bson:"is_suspected" json:"isSuspected"`
	Confidence float64   `bson:"confidence" json:"confidence"`
	Checks     []Verdict `bson:"checks" json:"checks"`
}
