// Package ledger persists the last report digest and outcome of every unit
// so consecutive runs can be compared.
package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

const keyPrefix = "unit/"

// Record is what the ledger keeps per unit
type Record struct {
	Unit     string    `json:"unit"`
	RunID    string    `json:"run_id"`
	Digest   string    `json:"digest"`
	Passed   int       `json:"passed"`
	Total    int       `json:"total"`
	Recorded time.Time `json:"recorded"`
}

// SameOutcome reports whether r and other have identical pass counts
func (r Record) SameOutcome(other Record) bool {
	return r.Passed == other.Passed && r.Total == other.Total
}

// Ledger is a LevelDB backed store of unit records
type Ledger struct {
	db  *leveldb.DB
	log log.Logger
}

// Open opens or creates a ledger database in dir
func Open(dir string, logger log.Logger) (*Ledger, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, types.NewInvalidArgumentError("dir", "must not be empty")
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ledger at %s", dir)
	}
	return newLedger(db, logger), nil
}

// OpenMemory opens a ledger that lives only in memory
func OpenMemory(logger log.Logger) (*Ledger, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open in-memory ledger")
	}
	return newLedger(db, logger), nil
}

func newLedger(db *leveldb.DB, logger log.Logger) *Ledger {
	if logger == nil {
		logger = log.New()
	}
	return &Ledger{db: db, log: logger}
}

// Last returns the most recent record of unit
func (l *Ledger) Last(unit string) (Record, bool, error) {
	data, err := l.db.Get([]byte(keyPrefix+unit), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "failed to read ledger record for %s", unit)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, errors.Wrapf(err, "corrupt ledger record for %s", unit)
	}
	return rec, true, nil
}

// Record stores rec as the latest record of its unit and returns the record
// it replaced, if any.
func (l *Ledger) Record(rec Record) (Record, bool, error) {
	if strings.TrimSpace(rec.Unit) == "" {
		return Record{}, false, types.NewInvalidArgumentError("unit", "must not be empty")
	}
	prev, found, err := l.Last(rec.Unit)
	if err != nil {
		return Record{}, false, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, false, errors.Wrap(err, "failed to encode ledger record")
	}
	if err := l.db.Put([]byte(keyPrefix+rec.Unit), data, nil); err != nil {
		return Record{}, false, errors.Wrapf(err, "failed to write ledger record for %s", rec.Unit)
	}
	l.log.Debug("Ledger record stored", "unit", rec.Unit, "digest", rec.Digest, "previous", prev.Digest)
	return prev, found, nil
}

// All returns every record ordered by unit description
func (l *Ledger) All() ([]Record, error) {
	it := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer it.Release()

	var out []Record
	for it.Next() {
		var rec Record
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, errors.Wrapf(err, "corrupt ledger record at %s", it.Key())
		}
		out = append(out, rec)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate ledger")
	}
	return out, nil
}

// Close releases the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}
