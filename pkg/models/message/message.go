package message

// ID is assigned by the mail provider; this system never generates one.
type ID string

type Label string

const (
	LabelInbox   Label = "INBOX"
	LabelStarred Label = "STARRED"
	LabelSpam    Label = "SPAM"
)

// UnknownSender is reported when a message has no From header.
const UnknownSender = "Unknown"

// Summary is one row of the inbox listing.
type Summary struct {
	ID      ID     `json:"id"`
	Sender  string `json:"sender"`
	Snippet string `json:"snippet"`
	Starred bool   `json:"starred"`
	Spam    bool   `json:"spam"`
}

// Detail is a single message as read from the provider.
type Detail struct {
	ID       ID      `json:"id"`
	ThreadID string  `json:"threadId,omitempty"`
	Sender   string  `json:"sender"`
	Subject  string  `json:"subject"`
	Date     string  `json:"date,omitempty"`
	Snippet  string  `json:"snippet"`
	Body     string  `json:"body,omitempty"`
	Starred  bool    `json:"starred"`
	Spam     bool    `json:"spam"`
	Labels   []Label `json:"labels"`
}

func (d Detail) Summary() Summary {
	return Summary{
		ID:      d.ID,
		Sender:  d.Sender,
		Snippet: d.Snippet,
		Starred: d.Starred,
		Spam:    d.Spam,
	}
}

// MirrorFields is what an observation of the message contributes to its
// metadata record.
func (d Detail) MirrorFields() MetadataFields {
	return MetadataFields{
		Sender:  String(d.Sender),
		Starred: Bool(d.Starred),
		Spam:    Bool(d.Spam),
	}
}

func HasLabel(labels []Label, want Label) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}
