package render

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// Cursor is the opaque pagination token handed back to a caller between
// pages of cursor-based pagination (§6): the absolute row offset the next
// page should resume from, tagged with a schema-version hash so a cursor
// minted against one flow/request shape is rejected rather than silently
// reused against an incompatible one (SPEC_FULL.md "Cursor schema-version
// tag").
type Cursor struct {
	SchemaVersion string `json:"v"`
	Offset        int    `json:"o"`
}

// SchemaVersion derives a short deterministic tag from the ordered column
// list a plan's pagination seeks on, so that a catalog change reordering,
// adding, or removing one of those columns invalidates any cursor minted
// before the change.
func SchemaVersion(cols []request.Field) string {
	h := sha256.New()
	for _, c := range cols {
		h.Write([]byte(c.Qualified()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// EncodeCursor serializes a page boundary into an opaque, URL-safe token.
func EncodeCursor(schemaVersion string, offset int) (string, error) {
	raw, err := json.Marshal(Cursor{SchemaVersion: schemaVersion, Offset: offset})
	if err != nil {
		return "", fmt.Errorf("render: encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses token and checks it against schemaVersion, returning
// ErrMalformedPagination (§7) for a token that fails to decode or was
// minted against a different query shape.
func DecodeCursor(token, schemaVersion string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, semaerr.ErrMalformedPagination.New("cursor is not validly encoded")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, semaerr.ErrMalformedPagination.New("cursor payload is malformed")
	}
	if c.SchemaVersion != schemaVersion {
		return nil, semaerr.ErrMalformedPagination.New("cursor was minted against a different query shape")
	}
	return &c, nil
}

// tiebreakOrder returns the deterministic total order pagination seeks on:
// the requested order columns first, then every other selected dimension
// not already named by an order column, then the base table's primary key
// (when it is itself a declared dimension) if still not present. This
// guarantees stable paging even when the requested order alone has ties.
func tiebreakOrder(plan *planner.Plan) []request.ResolvedOrder {
	seen := map[string]bool{}
	var out []request.ResolvedOrder

	for _, o := range plan.Order {
		if !seen[o.Field.Qualified()] {
			seen[o.Field.Qualified()] = true
			out = append(out, o)
		}
	}
	for _, d := range plan.Dimensions {
		if !seen[d.Qualified()] {
			seen[d.Qualified()] = true
			out = append(out, request.ResolvedOrder{Field: d, Direction: request.Asc})
		}
	}

	base := plan.Resolved.AliasTables[plan.BaseAlias()]
	if base.PrimaryKey != "" {
		if _, ok := base.Dimensions[base.PrimaryKey]; ok {
			pk := request.Field{Alias: plan.BaseAlias(), Name: base.PrimaryKey, Table: base}
			if !seen[pk.Qualified()] {
				out = append(out, request.ResolvedOrder{Field: pk, Direction: request.Asc})
			}
		}
	}
	return out
}

func tiebreakFields(order []request.ResolvedOrder) []request.Field {
	out := make([]request.Field, len(order))
	for i, o := range order {
		out[i] = o.Field
	}
	return out
}

// NextPage computes the next cursor for the page plan.Cursor (or the first
// page, when empty) just produced, given it asked for pageSize rows and
// actually got rowCount back. It reports hasMore=false (and an empty
// cursor) once a page comes back short, the same "less than a full page
// means the last page" signal the HTTP surface's paginated response shape
// relies on (§6).
func NextPage(plan *planner.Plan, pageSize, rowCount int) (cursor string, hasMore bool, err error) {
	schemaVersion := SchemaVersion(tiebreakFields(tiebreakOrder(plan)))

	startOffset := 0
	if plan.Cursor != "" {
		c, err := DecodeCursor(plan.Cursor, schemaVersion)
		if err != nil {
			return "", false, err
		}
		startOffset = c.Offset
	}

	if rowCount < pageSize {
		return "", false, nil
	}
	token, err := EncodeCursor(schemaVersion, startOffset+rowCount)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}
