package azdo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
	"github.com/rs/zerolog"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// MaxBatchSize is the largest number of ids the work items endpoint accepts
// in one request. Larger lookups are split into sequential requests.
const MaxBatchSize = 200

// BuildAPI is the subset of build.Client used by release-gate.
// build.Client satisfies it; tests provide fakes.
type BuildAPI interface {
	GetBuildWorkItemsRefs(ctx context.Context, args build.GetBuildWorkItemsRefsArgs) (*[]webapi.ResourceRef, error)
}

// WorkItemAPI is the subset of workitemtracking.Client used by release-gate.
type WorkItemAPI interface {
	GetWorkItems(ctx context.Context, args workitemtracking.GetWorkItemsArgs) (*[]workitemtracking.WorkItem, error)
}

// Client wraps the Azure DevOps SDK clients. It converts SDK types into
// model types and guards against the nil collections the SDK may return.
//
// Usage:
//
//	c, err := azdo.NewClient(ctx, collectionURI, token, logger)
//	if err != nil { /* handle */ }
//	refs, err := c.ListWorkItemRefsForBuild(ctx, projectID, buildID)
type Client struct {
	builds    BuildAPI
	workItems WorkItemAPI
	logger    zerolog.Logger
}

// NewClient connects to the Azure DevOps collection at endpointURL using
// the job access token.
//
// Returns a model.CheckError of kind KindLookup if the endpoint or token is
// missing, and of kind KindRemote if the SDK clients cannot be created.
func NewClient(ctx context.Context, endpointURL, token string, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(endpointURL) == "" || token == "" {
		return nil, model.NewLookupError("Didn't find System.TeamFoundationCollectionUri or access token")
	}

	// The job token is accepted as a PAT: basic auth with an empty user.
	connection := azuredevops.NewPatConnection(strings.TrimRight(endpointURL, "/"), token)

	builds, err := build.NewClient(ctx, connection)
	if err != nil {
		return nil, model.WrapRemoteError("failed to create build client", err)
	}
	workItems, err := workitemtracking.NewClient(ctx, connection)
	if err != nil {
		return nil, model.WrapRemoteError("failed to create work item tracking client", err)
	}

	return NewClientFromAPIs(builds, workItems, logger), nil
}

// NewClientFromAPIs creates a Client over already constructed SDK clients.
func NewClientFromAPIs(builds BuildAPI, workItems WorkItemAPI, logger zerolog.Logger) *Client {
	return &Client{builds: builds, workItems: workItems, logger: logger}
}

// ListWorkItemRefsForBuild returns the work items linked to a build.
// References whose id cannot be parsed are skipped with a warning.
func (c *Client) ListWorkItemRefsForBuild(ctx context.Context, projectID string, buildID int) ([]model.WorkItemRef, error) {
	refs, err := c.builds.GetBuildWorkItemsRefs(ctx, build.GetBuildWorkItemsRefsArgs{
		Project: &projectID,
		BuildId: &buildID,
	})
	if err != nil {
		return nil, model.WrapRemoteError(
			fmt.Sprintf("failed to list work items of build %d", buildID), err)
	}
	if refs == nil {
		return []model.WorkItemRef{}, nil
	}

	out := make([]model.WorkItemRef, 0, len(*refs))
	for _, ref := range *refs {
		if ref.Id == nil {
			c.logger.Warn().Msg("Skipping work item reference without id")
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(*ref.Id))
		if err != nil {
			c.logger.Warn().Str("id", *ref.Id).Msg("Skipping work item reference with non-numeric id")
			continue
		}
		out = append(out, model.WorkItemRef{ID: id})
	}
	return out, nil
}

// GetWorkItems fetches the given work items. When fields is non-empty only
// those fields are requested; expandRelations asks for relation data.
// The service rejects a field filter combined with relation expansion, so
// expandRelations wins when both are given.
func (c *Client) GetWorkItems(ctx context.Context, ids []int, fields []string, expandRelations bool) ([]model.WorkItem, error) {
	out := make([]model.WorkItem, 0, len(ids))

	for start := 0; start < len(ids); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(ids))
		batch := ids[start:end]

		args := workitemtracking.GetWorkItemsArgs{Ids: &batch}
		if expandRelations {
			expand := workitemtracking.WorkItemExpandValues.Relations
			args.Expand = &expand
		} else if len(fields) > 0 {
			requested := fields
			args.Fields = &requested
		}

		items, err := c.workItems.GetWorkItems(ctx, args)
		if err != nil {
			return nil, model.WrapRemoteError(
				fmt.Sprintf("failed to get %d work item(s)", len(batch)), err)
		}
		if items == nil {
			continue
		}
		for _, item := range *items {
			converted, ok := convertWorkItem(item)
			if !ok {
				c.logger.Warn().Msg("Skipping work item without id")
				continue
			}
			out = append(out, converted)
		}
		c.logger.Debug().Int("requested", len(batch)).Int("returned", len(*items)).Msg("Fetched work items")
	}

	return out, nil
}
