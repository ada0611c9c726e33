package message

// MetadataRecord is the mirrored document, one per message id.
type MetadataRecord struct {
	ID      ID     `json:"id" dynamodbav:"id"`
	Sender  string `json:"sender,omitempty" dynamodbav:"sender,omitempty"`
	Starred bool   `json:"starred" dynamodbav:"starred"`
	Spam    bool   `json:"spam" dynamodbav:"spam"`
}

// MetadataFields is a partial record. An upsert writes exactly the non-nil
// fields and leaves the rest of the stored record untouched.
type MetadataFields struct {
	Sender  *string
	Starred *bool
	Spam    *bool
}

func (f MetadataFields) IsEmpty() bool {
	return f.Sender == nil && f.Starred == nil && f.Spam == nil
}

// Apply overwrites rec with the non-nil fields of f.
func (f MetadataFields) Apply(rec MetadataRecord) MetadataRecord {
	if f.Sender != nil {
		rec.Sender = *f.Sender
	}
	if f.Starred != nil {
		rec.Starred = *f.Starred
	}
	if f.Spam != nil {
		rec.Spam = *f.Spam
	}
	return rec
}

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
