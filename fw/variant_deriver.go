package fw

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/sched"
	"github.com/oonfwd/oonfwd/table"
)

// ladderTerminator is the quality-token search marker, spec.md §6's
// "ladder-terminator" grammar rule.
const ladderTerminator = "kbit"

// TranscodeFunc computes a derived child Data's content from its parent's
// content. The default, transcodeTruncate, reproduces forwarder.cpp's
// literal `content.size() - 4` placeholder (spec.md §9 note 3); a real
// deployment can substitute an actual bitrate-downscaling transform here
// without touching any pipeline wiring.
type TranscodeFunc func(parentContent []byte, childIndex, parentIndex int) []byte

// transcodeTruncate is forwarder.cpp's simulation placeholder: a buffer
// four bytes shorter than the parent, modeling the removal of a trailing
// checksum/seq field. Panics are avoided by clamping at zero length.
func transcodeTruncate(parentContent []byte, childIndex, parentIndex int) []byte {
	n := len(parentContent) - 4
	if n < 0 {
		n = 0
	}
	out := make([]byte, n)
	copy(out, parentContent)
	return out
}

// VariantDeriver implements spec.md §4.3.3/§4.3.4's novel pipeline: given
// a child Interest whose name encodes a quality level on a fixed ladder,
// search successively higher-bitrate ladder entries in the Object
// Processor cache for a usable parent, and synthesize the child Data
// from the first one found.
// Grounded line-for-line on forwarder.cpp's onObjectProcessorHit /
// onProcessingData (NAME_MAP/RENAME_MAP quality-token substitution,
// pos_1/pos_2 marker search, the index+1..20 probe loop, content.size()-4,
// signature type 255 value 0), with the opMIPS compute-budget gate
// supplemented from apps/oon-processor.cpp (SPEC_FULL.md §4 item 3).
type VariantDeriver struct {
	ladder     []string // ascending bitrate, index 0 = lowest
	movieToken string
	transcode  TranscodeFunc

	budget            int
	opMIPS            int
	costPerDerivation int
	sched             *sched.Scheduler
}

// NewVariantDeriver constructs a VariantDeriver against the configured
// bitrate ladder and movie token (spec.md §6), with an opMIPS compute
// budget that is replenished once per second by sc. Malformed ladder
// tokens are dropped with a warning rather than rejected outright, so a
// single bad config entry does not prevent startup.
func NewVariantDeriver(ladder []string, movieToken string, opMIPS int, sc *sched.Scheduler) *VariantDeriver {
	clean := make([]string, 0, len(ladder))
	for _, tok := range ladder {
		if err := ValidateLadderToken(tok); err != nil {
			core.Log.Warn(nil, "dropping malformed bitrate ladder token", "token", tok, "err", err)
			continue
		}
		clean = append(clean, tok)
	}
	d := &VariantDeriver{
		ladder:            clean,
		movieToken:        movieToken,
		transcode:         transcodeTruncate,
		opMIPS:            opMIPS,
		budget:            opMIPS,
		costPerDerivation: 1,
		sched:             sc,
	}
	d.armReplenish()
	return d
}

func (d *VariantDeriver) armReplenish() {
	if d.sched == nil {
		return
	}
	var tick func()
	tick = func() {
		d.budget = d.opMIPS
		d.sched.Schedule(time.Second, tick)
	}
	d.sched.Schedule(time.Second, tick)
}

// SetTranscodeFunc overrides the default truncate-by-4-bytes placeholder.
func (d *VariantDeriver) SetTranscodeFunc(f TranscodeFunc) { d.transcode = f }

// extractQualityToken locates the exact quality-token substring (e.g.
// "_500") in name's second-to-last component, the component preceding
// the seqno per spec.md §6's grammar: <movie-token><quality-token>kbit.
// It mirrors forwarder.cpp's pos_1/pos_2 substring extraction (pos_1 =
// end of the movie token, pos_2 = start of the "kbit" marker) rather than
// an ordered substring scan, so a token that happens to be a numeric
// prefix of another (e.g. "_50" inside "_500kbit") can never be
// mismatched against the wrong ladder entry.
func (d *VariantDeriver) extractQualityToken(comp string) (token string, ok bool) {
	pos1 := strings.Index(comp, d.movieToken)
	if pos1 < 0 {
		return "", false
	}
	pos1 += len(d.movieToken)
	rest := comp[pos1:]
	pos2 := strings.Index(rest, ladderTerminator)
	if pos2 < 0 {
		return "", false
	}
	return rest[:pos2], true
}

// qualityIndex returns the ladder index of the quality token embedded in
// name's second-to-last component, via an exact match against d.ladder
// (never an ordered Contains scan, which would misclassify a token that
// is a numeric prefix of another, e.g. "_50" vs "_500"), or ok=false if
// the grammar markers are not present or the token is not on the ladder.
func (d *VariantDeriver) qualityIndex(name defn.Name) (idx int, ok bool) {
	if len(name) < 2 {
		return 0, false
	}
	token, ok := d.extractQualityToken(name[len(name)-2].String())
	if !ok {
		return 0, false
	}
	for i, q := range d.ladder {
		if q == token {
			return i, true
		}
	}
	return 0, false
}

// renamed returns a copy of name with its quality-bearing component's
// ladder token replaced by d.ladder[newIdx], mirroring forwarder.cpp's
// RENAME_MAP substitution.
func (d *VariantDeriver) renamed(name defn.Name, curToken string, newIdx int) (defn.Name, error) {
	if newIdx < 0 || newIdx >= len(d.ladder) {
		return nil, fmt.Errorf("variant_deriver: ladder index %d out of range", newIdx)
	}
	out := name.Clone()
	comp := out[len(out)-2].String()
	replaced := strings.Replace(comp, curToken, d.ladder[newIdx]+ladderTerminator, 1)
	nc, err := defn.ComponentFromStr(replaced)
	if err != nil {
		return nil, err
	}
	out[len(out)-2] = nc
	return out, nil
}

// currentToken returns the exact ladder token substring (including the
// "kbit" terminator) present in name's quality component, for use as the
// search/replace anchor in renamed.
func (d *VariantDeriver) currentToken(name defn.Name, idx int) string {
	token, ok := d.extractQualityToken(name[len(name)-2].String())
	if !ok {
		return d.ladder[idx] + ladderTerminator
	}
	return token + ladderTerminator
}

// derivationResult carries the outcome of one Derive call's ladder walk.
type derivationResult struct {
	childData   *defn.Data
	parentIndex int
	ok          bool
}

// OK reports whether a usable parent was found within budget.
func (r derivationResult) OK() bool { return r.ok }

// Data returns the synthesized child Data, valid only when OK() is true.
func (r derivationResult) Data() *defn.Data { return r.childData }

// Derive attempts to synthesize childInterest's Data from a cached parent
// at a higher ladder index, per spec.md §4.3.3 steps 1-4. It returns
// ok=false if the name does not match the quality grammar, if no parent
// index above the child's is present in opCache, or if the compute
// budget is exhausted. pit receives a placeholder entry for every
// candidate parent name probed, hit or miss, per spec.md §4.3.3 step 3c,
// so a concurrent child Interest needing the same parent variant coalesces
// onto the same PIT entry. Each call still probes opCache itself, whether
// or not the placeholder already existed.
func (d *VariantDeriver) Derive(childInterest *defn.Interest, opCache *table.ObjectProcessorCache, pit *table.Pit) derivationResult {
	q, ok := d.qualityIndex(childInterest.Name)
	if !ok {
		return derivationResult{}
	}
	curToken := d.currentToken(childInterest.Name, q)

	for p := q + 1; p < len(d.ladder); p++ {
		if d.budget < d.costPerDerivation {
			core.Log.Debug(nil, "object processor compute budget exhausted", "name", childInterest.Name.String())
			return derivationResult{}
		}

		parentName, err := d.renamed(childInterest.Name, curToken, p)
		if err != nil {
			core.Log.Warn(nil, "variant deriver rename failed", "err", err)
			continue
		}
		parentInterest := &defn.Interest{
			Name:     parentName,
			Nonce:    childInterest.Nonce,
			Lifetime: childInterest.Lifetime,
		}
		if pit != nil {
			pit.Insert(parentInterest)
		}

		var parentData *defn.Data
		opCache.Find(parentInterest, func(data *defn.Data) { parentData = data }, func() {})
		if parentData == nil {
			continue
		}

		d.budget -= d.costPerDerivation
		content := d.transcode(parentData.Content, q, p)
		child := &defn.Data{
			Name:    childInterest.Name.Clone(),
			Content: content,
			Signature: defn.SignatureInfo{
				Type:  255,
				Value: []byte{0},
			},
		}
		return derivationResult{childData: child, parentIndex: p, ok: true}
	}
	return derivationResult{}
}

// ValidateLadderToken checks that tok parses as a quality token
// ("_<digits>"), grounded on forwarder.cpp's NAME_MAP construction-time
// validation.
func ValidateLadderToken(tok string) error {
	if !strings.HasPrefix(tok, "_") {
		return fmt.Errorf("variant_deriver: ladder token %q missing leading underscore", tok)
	}
	if _, err := strconv.Atoi(tok[1:]); err != nil {
		return fmt.Errorf("variant_deriver: ladder token %q: %w", tok, err)
	}
	return nil
}
