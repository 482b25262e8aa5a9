// Package advisor produces natural-language performance summaries for
// project members by calling a chat-completion API.
package advisor

import (
	"context"
	"fmt"
	"strings"
)

// TaskFact is one completed task fed into the analysis prompt.
type TaskFact struct {
	Name        string
	Description string
	Hours       int
}

// AnalysisInput carries the project/member facts the prompt is built
// from. Hours are the member's closed hours versus everyone's.
type AnalysisInput struct {
	ProjectName        string
	ProjectDescription string
	MemberName         string
	DoneTasks          []TaskFact
	MemberHours        int
	TotalHours         int
}

// Advisor returns a natural-language performance summary. Failures
// degrade to an error the caller reports as text; they never panic.
type Advisor interface {
	AnalyzeMember(ctx context.Context, in AnalysisInput) (string, error)
}

const promptTemplate = `You are a project manager who analyzes an employee's
performance from their task statistics (hours closed). Please analyze this
employee's performance. Is the employee struggling? Does the employee close
enough tasks compared to the others?

Project name: %s
Project description: %s
Employee name: %s
Tasks completed by the employee within the project:
%s
Hours closed in the project by this employee: %d
Hours closed in the project by all employees: %d`

func buildPrompt(in AnalysisInput) string {
	var tasks strings.Builder
	for _, t := range in.DoneTasks {
		fmt.Fprintf(&tasks, "Task name: %s\n", t.Name)
		fmt.Fprintf(&tasks, "Task description: %s\n", t.Description)
		fmt.Fprintf(&tasks, "Hours spent on the task: %d\n", t.Hours)
	}
	if tasks.Len() == 0 {
		tasks.WriteString("(none)\n")
	}
	return fmt.Sprintf(promptTemplate,
		in.ProjectName, in.ProjectDescription, in.MemberName,
		tasks.String(), in.MemberHours, in.TotalHours)
}
