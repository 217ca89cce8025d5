// Package config resolves the release-gate configuration from the host
// orchestrator.
//
// This package handles:
//   - Reading pipeline variables and task inputs from the environment the
//     way Azure Pipelines exposes them (System.TeamProjectId becomes
//     SYSTEM_TEAMPROJECTID, input "branches" becomes INPUT_BRANCHES), using
//     github.com/spf13/viper with .env files loaded by github.com/joho/godotenv
//     for local runs
//   - Parsing the comma-separated branch and release lists and pairing them
//     positionally
//   - Determining the current release from the pull request target branch
//   - Loading an optional YAML mapping file (gopkg.in/yaml.v3)
package config
