package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	in := AnalysisInput{
		ProjectName:        "Atlas",
		ProjectDescription: "Mapping service",
		MemberName:         "Grace",
		DoneTasks: []TaskFact{
			{Name: "Write docs", Description: "User guide", Hours: 12},
			{Name: "Fix search", Description: "Index bug", Hours: 4},
		},
		MemberHours: 16,
		TotalHours:  40,
	}

	prompt := buildPrompt(in)
	assert.Contains(t, prompt, "Project name: Atlas")
	assert.Contains(t, prompt, "Employee name: Grace")
	assert.Contains(t, prompt, "Task name: Write docs")
	assert.Contains(t, prompt, "Hours spent on the task: 4")
	assert.Contains(t, prompt, "Hours closed in the project by this employee: 16")
	assert.Contains(t, prompt, "Hours closed in the project by all employees: 40")
}

func TestBuildPromptNoTasks(t *testing.T) {
	prompt := buildPrompt(AnalysisInput{ProjectName: "Atlas", MemberName: "Grace"})
	assert.Contains(t, prompt, "(none)")
}
