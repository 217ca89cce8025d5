package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// Well-known Azure Pipelines variables read by release-gate.
const (
	VarTargetBranch  = "System.PullRequest.TargetBranch"
	VarProjectID     = "System.TeamProjectId"
	VarBuildID       = "Build.BuildId"
	VarCollectionURI = "System.TeamFoundationCollectionUri"
	VarAccessToken   = "System.AccessToken"

	// VarEndpointToken is how the agent exposes the access token of the
	// SYSTEMVSSCONNECTION service endpoint to tasks.
	VarEndpointToken = "Endpoint.Auth.Parameter.SYSTEMVSSCONNECTION.AccessToken"
)

// Task input names, as declared in task.json.
const (
	InputBranches  = "branches"
	InputReleases  = "releases"
	InputFieldName = "fieldName"
)

// DefaultEnvFiles are loaded, in order, by NewPipelineEnv. Values already
// present in the process environment are never overridden.
var DefaultEnvFiles = []string{".env", ".env.local"}

// HostEnv gives read-only access to the variables and task inputs the host
// orchestrator provides.
type HostEnv interface {
	// Variable returns a pipeline variable. The second return value is
	// false when the variable is not set or empty.
	Variable(name string) (string, bool)

	// Input returns a task input. When required is true and the input is
	// not set, a model.CheckError of kind KindLookup is returned.
	Input(name string, required bool) (string, error)
}

// PipelineEnv is the HostEnv backed by the process environment.
//
// Variable and input names are mapped to environment keys the way the
// Azure Pipelines agent does it: dots become underscores and everything is
// upper-cased. viper performs that mapping through AutomaticEnv and its key
// replacer. Values set through Override take precedence over the
// environment, which is how CLI flags are layered on top.
type PipelineEnv struct {
	v *viper.Viper
}

// NewPipelineEnv creates a PipelineEnv. The given .env files (DefaultEnvFiles
// when none are passed) are loaded first so local runs can emulate the
// agent; missing files are ignored.
func NewPipelineEnv(envFiles ...string) *PipelineEnv {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load never overrides variables already in the environment.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_", " ", "_"))

	return &PipelineEnv{v: v}
}

// Variable implements HostEnv.
func (e *PipelineEnv) Variable(name string) (string, bool) {
	value := e.v.GetString(name)
	if value == "" {
		return "", false
	}
	return value, true
}

// Input implements HostEnv.
func (e *PipelineEnv) Input(name string, required bool) (string, error) {
	value := strings.TrimSpace(e.v.GetString(inputKey(name)))
	if value == "" && required {
		return "", model.NewLookupError(fmt.Sprintf("Input required: %s", name))
	}
	return value, nil
}

// OverrideVariable sets a variable value that takes precedence over the
// environment. Empty values are ignored so unset flags do not mask
// environment values.
func (e *PipelineEnv) OverrideVariable(name, value string) {
	if value == "" {
		return
	}
	e.v.Set(name, value)
}

// OverrideInput sets a task input value that takes precedence over the
// environment. Empty values are ignored.
func (e *PipelineEnv) OverrideInput(name, value string) {
	if value == "" {
		return
	}
	e.v.Set(inputKey(name), value)
}

// inputKey maps a task input name to the viper key whose environment form
// is INPUT_<NAME>.
func inputKey(name string) string {
	return "input." + name
}

// ReadInputs collects the configuration inputs from the host.
// None of the inputs are read as required: absent lists are reported by
// Resolve as a configuration error, and an absent field name is a valid
// (if degenerate) configuration.
func ReadInputs(env HostEnv) (Inputs, error) {
	branches, err := env.Input(InputBranches, false)
	if err != nil {
		return Inputs{}, err
	}
	releases, err := env.Input(InputReleases, false)
	if err != nil {
		return Inputs{}, err
	}
	fieldName, err := env.Input(InputFieldName, false)
	if err != nil {
		return Inputs{}, err
	}
	target, _ := env.Variable(VarTargetBranch)

	return Inputs{
		Branches:     branches,
		Releases:     releases,
		FieldName:    fieldName,
		TargetBranch: target,
	}, nil
}

// AccessToken returns the OAuth token the job runs with. System.AccessToken
// is used when mapped into the environment, otherwise the token of the
// SYSTEMVSSCONNECTION endpoint.
func AccessToken(env HostEnv) (string, bool) {
	if token, ok := env.Variable(VarAccessToken); ok {
		return token, true
	}
	return env.Variable(VarEndpointToken)
}
