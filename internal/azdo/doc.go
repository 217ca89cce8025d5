// Package azdo provides a wrapper around the Azure DevOps Go SDK for the
// two work-item queries release-gate performs.
//
// This package handles:
//   - Connection setup from the collection URI and the job access token
//   - Listing the work item references linked to a build
//   - Fetching work items, optionally restricted to some fields or with
//     relations expanded
//   - Converting SDK types (pointer-heavy, possibly nil collections) into
//     the plain model types used by the rest of the tool
//
// The package uses github.com/microsoft/azure-devops-go-api/azuredevops/v7
// as the underlying SDK. Timeouts and transport behavior are left to it.
package azdo
