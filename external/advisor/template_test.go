package advisor

import (
	"context"
	"strings"
	"testing"
	"time"

	langtableimpl "github.com/postcareplus/postcare-sms/external/langtable"
	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/scoring"
)

func testVitals(t *testing.T) scoring.Vitals {
	t.Helper()
	v, err := scoring.NewVitals(6, 7, 37.5, 8, time.Now())
	if err != nil {
		t.Fatalf("failed to build vitals: %v", err)
	}
	return v
}

func TestAdviseVitals_ComposesPerAlertTag(t *testing.T) {
	a := NewTemplateAdvisor(langtableimpl.NewKinyarwandaTable())

	result := scoring.Result{
		Severity:      7,
		RecoveryScore: 0.3,
		Alerts:        []scoring.Tag{scoring.TagHighPain, scoring.TagFever},
	}
	advice, err := a.AdviseVitals(context.Background(), testVitals(t), result, advisor.PatientContext{Name: "Mukamana"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(advice, "Ububabare bukomeye") {
		t.Fatalf("expected high pain advice, got %q", advice)
	}
	if !strings.Contains(advice, "Umuriro") {
		t.Fatalf("expected fever advice, got %q", advice)
	}
}

func TestAdviseVitals_NoAlerts(t *testing.T) {
	a := NewTemplateAdvisor(langtableimpl.NewKinyarwandaTable())

	good, err := a.AdviseVitals(context.Background(), testVitals(t), scoring.Result{RecoveryScore: 0.9}, advisor.PatientContext{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	general, err := a.AdviseVitals(context.Background(), testVitals(t), scoring.Result{RecoveryScore: 0.5}, advisor.PatientContext{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if good == general {
		t.Fatal("expected good-recovery and general-care advice to differ")
	}
}

func TestReply_QuestionGetsQuestionFraming(t *testing.T) {
	a := NewTemplateAdvisor(langtableimpl.NewKinyarwandaTable())

	question, err := a.Reply(context.Background(), "ese nshobora kurya inyama?", advisor.PatientContext{Name: "Uwimana"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	statement, err := a.Reply(context.Background(), "meze neza uyu munsi", advisor.PatientContext{Name: "Uwimana"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(question, "kubaza") {
		t.Fatalf("expected question framing, got %q", question)
	}
	if question == statement {
		t.Fatal("expected question and statement replies to differ")
	}
	if !strings.Contains(question, "Uwimana") || !strings.Contains(statement, "Uwimana") {
		t.Fatal("expected replies to address the patient by name")
	}
}
