// Package ugc formats Universal Geographic Code headers and resolves UGCs to
// the names, states and time zones used in product text.
package ugc

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed reports a UGC or header that cannot be parsed.
var ErrMalformed = errors.New("malformed ugc")

// stampLayout is the DDHHMM expiration stamp that closes a UGC header.
const stampLayout = "021504"

// split breaks "COC005" into ("COC", 5).
func split(code string) (string, int, bool) {
	if len(code) != 6 {
		return "", 0, false
	}
	n, err := strconv.Atoi(code[3:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return code[:3], n, true
}

// FormatUGCs renders the compressed header line for ugcs, e.g.
// "COC001>003-005-COZ039-152215-". Consecutive numbers within one state
// collapse into ranges. Codes that do not parse are emitted as they are.
func FormatUGCs(ugcs []string, expire time.Time) string {
	sorted := slices.Clone(ugcs)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var (
		b        strings.Builder
		curState string
		lastNum  = -2
		inSeq    bool
	)
	emit := func(s string) {
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(s)
	}
	flush := func() {
		if inSeq {
			fmt.Fprintf(&b, ">%03d", lastNum)
			inSeq = false
		}
	}

	for _, code := range sorted {
		state, num, ok := split(code)
		switch {
		case !ok:
			flush()
			emit(code)
			curState, lastNum = "", -2
		case state != curState:
			flush()
			emit(code)
			curState, lastNum = state, num
		case num == lastNum+1:
			inSeq = true
			lastNum = num
		default:
			flush()
			emit(fmt.Sprintf("%03d", num))
			lastNum = num
		}
	}
	flush()
	emit(expire.UTC().Format(stampLayout))
	b.WriteByte('-')
	return b.String()
}

// Decode expands a header line back into its sorted UGC list and returns the
// trailing DDHHMM stamp.
func Decode(header string) ([]string, string, error) {
	tokens := strings.Split(strings.TrimSuffix(strings.TrimSpace(header), "-"), "-")
	if len(tokens) < 2 {
		return nil, "", fmt.Errorf("%w: header %q has no stamp", ErrMalformed, header)
	}
	stamp := tokens[len(tokens)-1]
	if _, err := strconv.Atoi(stamp); err != nil || len(stamp) != 6 {
		return nil, "", fmt.Errorf("%w: bad stamp %q", ErrMalformed, stamp)
	}

	var (
		out   []string
		state string
	)
	for _, tok := range tokens[:len(tokens)-1] {
		from, to, isRange := strings.Cut(tok, ">")
		if len(from) == 6 {
			s, _, ok := split(from)
			if !ok {
				return nil, "", fmt.Errorf("%w: %q", ErrMalformed, tok)
			}
			state = s
			from = from[3:]
		}
		if state == "" {
			return nil, "", fmt.Errorf("%w: %q has no state", ErrMalformed, tok)
		}
		lo, err := strconv.Atoi(from)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", ErrMalformed, tok)
		}
		hi := lo
		if isRange {
			if hi, err = strconv.Atoi(to); err != nil || hi < lo {
				return nil, "", fmt.Errorf("%w: range %q", ErrMalformed, tok)
			}
		}
		for n := lo; n <= hi; n++ {
			out = append(out, fmt.Sprintf("%s%03d", state, n))
		}
	}
	return out, stamp, nil
}
