package reconcile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// WorkItemGetter fetches full work item records. It is the part of the
// remote work-item service the reconciler depends on.
type WorkItemGetter interface {
	// GetWorkItems returns the work items with the given ids. When fields is
	// non-empty only those fields are returned. expandRelations asks for
	// relation data, which makes the service include System.Parent.
	GetWorkItems(ctx context.Context, ids []int, fields []string, expandRelations bool) ([]model.WorkItem, error)
}

// Reconciler determines the violating work items of a build.
type Reconciler struct {
	getter WorkItemGetter
	logger zerolog.Logger
}

// New creates a Reconciler that fetches work items through getter.
func New(getter WorkItemGetter, logger zerolog.Logger) *Reconciler {
	return &Reconciler{getter: getter, logger: logger}
}

// resolution says how a candidate is judged.
type resolution int

const (
	// bySelf: the candidate has the field and is judged on its own value.
	bySelf resolution = iota

	// byParent: the candidate lacks the field and is judged on its parent.
	byParent
)

// candidate is a fetched work item together with the id whose field value
// decides its verdict.
type candidate struct {
	item        model.WorkItem
	resolution  resolution
	effectiveID string
}

// Reconcile returns the candidates that do not carry params.Release in
// params.FieldName, in a deterministic order: self and parent violators in
// the order the service returned the work items, then the candidates that
// could not be reconciled at all.
//
// The work items are fetched twice: once with relations to learn which
// candidates have the field and who their parents are, and once, batched,
// to read the field value of every effective id.
func (r *Reconciler) Reconcile(ctx context.Context, refs []model.WorkItemRef, params Params) ([]model.Violation, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	// Step 1: Fetch the full records of every candidate.
	ids := make([]int, 0, len(refs))
	requested := make(map[int]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := requested[ref.ID]; ok {
			continue
		}
		requested[ref.ID] = struct{}{}
		ids = append(ids, ref.ID)
	}
	items, err := r.getter.GetWorkItems(ctx, ids, nil, true)
	if err != nil {
		return nil, fmt.Errorf("fetching linked work items: %w", err)
	}
	r.logger.Debug().Int("requested", len(ids)).Int("returned", len(items)).Msg("Fetched linked work items")

	// Step 2 and 3: Partition and collect the effective ids.
	candidates, invalid := partition(items, params.FieldName)
	invalid = append(invalid, missing(refs, items)...)
	for _, inv := range invalid {
		r.logger.Warn().Int("id", inv.ID).Msg("Work item has neither the release field nor a parent")
	}

	lookupIDs, err := effectiveIDs(candidates)
	if err != nil {
		return nil, err
	}

	// Step 4: One batched lookup of the field for all effective ids.
	values := map[string]model.FieldValue{}
	if len(lookupIDs) > 0 {
		var fields []string
		if params.FieldName != "" {
			fields = []string{params.FieldName}
		}
		fetched, err := r.getter.GetWorkItems(ctx, lookupIDs, fields, false)
		if err != nil {
			return nil, fmt.Errorf("fetching %s values: %w", params.FieldName, err)
		}
		for _, item := range fetched {
			values[item.IDString()] = item.Field(params.FieldName)
		}
	}

	// Step 5 and 6: Judge every candidate independently.
	var violations []model.Violation
	for _, c := range candidates {
		value := values[c.effectiveID]
		if IsCompliant(value, params.Release) {
			continue
		}

		v := model.Violation{ID: c.item.ID}
		if c.resolution == byParent {
			v.ParentID = c.effectiveID
		}
		r.logger.Debug().
			Int("id", c.item.ID).
			Str("effectiveId", c.effectiveID).
			Bool("present", value.Present).
			Str("value", value.Value).
			Msg("Work item violates release")
		violations = append(violations, v)
	}

	// Step 7: Unresolvable candidates go last, without annotation.
	violations = append(violations, invalid...)

	return violations, nil
}

// partition splits fetched work items into candidates that can be judged
// (on their own value or their parent's) and those that cannot, in fetch order.
func partition(items []model.WorkItem, fieldName string) ([]candidate, []model.Violation) {
	var candidates []candidate
	var invalid []model.Violation

	for _, item := range items {
		if item.HasField(fieldName) {
			candidates = append(candidates, candidate{
				item:        item,
				resolution:  bySelf,
				effectiveID: item.IDString(),
			})
			continue
		}

		parentID, ok := canonicalParentID(item)
		if !ok {
			invalid = append(invalid, model.Violation{ID: item.ID})
			continue
		}
		candidates = append(candidates, candidate{
			item:        item,
			resolution:  byParent,
			effectiveID: parentID,
		})
	}

	return candidates, invalid
}

// missing returns the requested refs the service did not return, in ref
// order. They have no field map at all and are reported as unresolvable.
func missing(refs []model.WorkItemRef, items []model.WorkItem) []model.Violation {
	returned := make(map[int]struct{}, len(items))
	for _, item := range items {
		returned[item.ID] = struct{}{}
	}

	var out []model.Violation
	seen := make(map[int]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := returned[ref.ID]; ok {
			continue
		}
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, model.Violation{ID: ref.ID})
	}
	return out
}

// effectiveIDs returns the deduplicated effective ids in order of first
// appearance, as integers for the lookup request.
func effectiveIDs(candidates []candidate) ([]int, error) {
	seen := make(map[string]struct{}, len(candidates))
	ids := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.effectiveID]; ok {
			continue
		}
		seen[c.effectiveID] = struct{}{}

		id, err := strconv.Atoi(c.effectiveID)
		if err != nil {
			return nil, fmt.Errorf("invalid work item id %q: %w", c.effectiveID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// canonicalParentID returns the parent id in the same form as
// WorkItem.IDString. Parent links that are not integers cannot be looked up
// and yield false.
func canonicalParentID(item model.WorkItem) (string, bool) {
	raw, ok := item.ParentID()
	if !ok {
		return "", false
	}
	return NormalizeID(raw)
}
