package types

// TimeLayout is the local timestamp format stored in BatchRecord.Time
const TimeLayout = "2006-01-02 15:04:05"

// BatchRecord is the persisted record of one link operation. ID names the
// metadata namespace and FilesID names the namespace holding the entries.
// Files is only populated when entries are explicitly loaded.
type BatchRecord struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Source   string      `json:"source"`
	Target   string      `json:"target"`
	LinkType string      `json:"type_"`
	Time     string      `json:"time"`
	FilesID  string      `json:"files_id"`
	Files    []LinkEntry `json:"files"`
}

// Metadata returns a copy without the entry list
func (b BatchRecord) Metadata() BatchRecord {
	b.Files = []LinkEntry{}
	return b
}
