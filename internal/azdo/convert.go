package azdo

import (
	"path"
	"strconv"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// RelParent is the relation type that links a work item to its parent.
const RelParent = "System.LinkTypes.Hierarchy-Reverse"

// convertWorkItem converts an SDK work item into a model.WorkItem.
// Returns false if the item has no id.
func convertWorkItem(item workitemtracking.WorkItem) (model.WorkItem, bool) {
	if item.Id == nil {
		return model.WorkItem{}, false
	}

	out := model.WorkItem{ID: *item.Id}
	if item.Fields != nil {
		out.Fields = make(map[string]any, len(*item.Fields)+1)
		for k, v := range *item.Fields {
			out.Fields[k] = v
		}
	}

	// Older collections do not always project System.Parent into the field
	// map; the hierarchy relation carries the same information.
	if !out.HasField(model.ParentField) {
		if parentID, ok := parentFromRelations(item.Relations); ok {
			if out.Fields == nil {
				out.Fields = make(map[string]any, 1)
			}
			out.Fields[model.ParentField] = parentID
		}
	}

	return out, true
}

// parentFromRelations returns the parent id encoded in the URL of the first
// hierarchy-reverse relation, e.g. ".../_apis/wit/workItems/666".
func parentFromRelations(relations *[]workitemtracking.WorkItemRelation) (int, bool) {
	if relations == nil {
		return 0, false
	}
	for _, rel := range *relations {
		if rel.Rel == nil || rel.Url == nil || *rel.Rel != RelParent {
			continue
		}
		id, err := strconv.Atoi(path.Base(strings.TrimRight(*rel.Url, "/")))
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}
