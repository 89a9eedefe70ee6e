package records

import (
	"time"

	"github.com/arthur-debert/linkvault/pkg/ids"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// Assembler builds batch records. Now defaults to time.Now.
type Assembler struct {
	Now           func() time.Time
	BatchIDLength int
}

// Assemble builds the record of one link operation with a fresh batch id and
// the current local time. An empty name is replaced by a generated one.
func (a Assembler) Assemble(modeLabel, name, sourceRoot, targetRoot string, entries []types.LinkEntry) types.BatchRecord {
	now := a.Now
	if now == nil {
		now = time.Now
	}
	if entries == nil {
		entries = []types.LinkEntry{}
	}
	return types.BatchRecord{
		ID:       ids.NewToken(a.BatchIDLength),
		Name:     ids.BatchName(name),
		Source:   sourceRoot,
		Target:   targetRoot,
		LinkType: modeLabel,
		Time:     now().Local().Format(types.TimeLayout),
		Files:    entries,
	}
}
