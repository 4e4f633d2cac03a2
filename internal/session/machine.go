package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/postcareplus/postcare-sms/internal/repository"
	"github.com/postcareplus/postcare-sms/internal/scoring"
)

// StepResult is one machine transition: the state to move to, the
// replies owed to the patient, and effect flags for the manager to act
// on. The machine never touches storage or collaborators itself.
type StepResult struct {
	Next    repository.ConversationState
	Replies []string

	ClearVitals bool
	StoredVital string
	StoredValue float64
	// CompletedVitals is set on exactly the transition that captures the
	// fourth vital of a round.
	CompletedVitals *scoring.Vitals

	FreeText          string
	DoctorRequested   bool
	EmergencyDetected bool
	EmergencyFollowup bool
	EndSession        bool
}

// Machine holds the transition table for patient conversations. It is
// pure: one inbound text plus the current session produces one result,
// with all side effects left to the caller.
type Machine struct {
	table langtable.Table
}

func NewMachine(table langtable.Table) *Machine {
	return &Machine{table: table}
}

func (m *Machine) Step(sess *repository.Session, text string, now time.Time) (StepResult, error) {
	switch sess.State {
	case repository.StateInitial, repository.StateMainMenu:
		return m.stepMenu(sess, text), nil
	case repository.StateCollectingPain, repository.StateCollectingWound,
		repository.StateCollectingTemperature, repository.StateCollectingMobility:
		return m.stepCollecting(sess, text, now)
	case repository.StateFreeConversation:
		return m.stepFreeConversation(sess, text), nil
	case repository.StateEmergencyMode:
		return StepResult{
			Next:              repository.StateEmergencyMode,
			Replies:           []string{m.render(sess, langtable.KeyEmergencyResponse, nil)},
			EmergencyFollowup: true,
		}, nil
	default:
		return StepResult{}, fmt.Errorf("no transition from state %q", sess.State)
	}
}

func (m *Machine) stepMenu(sess *repository.Session, text string) StepResult {
	switch strings.TrimSpace(text) {
	case "1":
		return StepResult{
			Next:        repository.StateCollectingPain,
			Replies:     []string{m.render(sess, langtable.KeyPainPrompt, nil)},
			ClearVitals: true,
		}
	case "2":
		return StepResult{
			Next:    repository.StateFreeConversation,
			Replies: []string{m.render(sess, langtable.KeyFreeConversationPrompt, nil)},
		}
	case "3":
		return StepResult{
			Next:    repository.StateEmergencyMode,
			Replies: []string{m.render(sess, langtable.KeyEmergencyPrompt, nil)},
		}
	case "4":
		return StepResult{
			Next:    repository.StateMainMenu,
			Replies: []string{m.render(sess, langtable.KeyRecoveryStatus, nil)},
		}
	case "5":
		return StepResult{
			Next:            repository.StateMainMenu,
			Replies:         []string{m.render(sess, langtable.KeyDoctorConnect, nil)},
			DoctorRequested: true,
		}
	case "0":
		return StepResult{
			Next:       repository.StateEnded,
			Replies:    []string{m.render(sess, langtable.KeyGoodbye, nil)},
			EndSession: true,
		}
	default:
		reply := m.render(sess, langtable.KeyInvalidSelection, nil) + "\n\n" + m.render(sess, langtable.KeyMainMenu, nil)
		return StepResult{
			Next:    repository.StateMainMenu,
			Replies: []string{reply},
		}
	}
}

func (m *Machine) stepCollecting(sess *repository.Session, text string, now time.Time) (StepResult, error) {
	value, ok := extractNumber(text)

	switch sess.State {
	case repository.StateCollectingPain:
		if !ok || value < scoring.ScaleMin || value > scoring.ScaleMax {
			return m.repromptScale(sess), nil
		}
		return StepResult{
			Next: repository.StateCollectingWound,
			Replies: []string{m.render(sess, langtable.KeyWoundPrompt, map[string]string{
				"pain_description": m.table.PainLevelDescription(value),
			})},
			StoredVital: repository.VitalPain,
			StoredValue: value,
		}, nil

	case repository.StateCollectingWound:
		if !ok || value < scoring.ScaleMin || value > scoring.ScaleMax {
			return m.repromptScale(sess), nil
		}
		return StepResult{
			Next: repository.StateCollectingTemperature,
			Replies: []string{m.render(sess, langtable.KeyTemperaturePrompt, map[string]string{
				"wound": formatVital(value),
			})},
			StoredVital: repository.VitalWound,
			StoredValue: value,
		}, nil

	case repository.StateCollectingTemperature:
		if !ok || value < scoring.TempMinC || value > scoring.TempMaxC {
			return StepResult{
				Next:    sess.State,
				Replies: []string{m.render(sess, langtable.KeyRepromptTemperature, nil)},
			}, nil
		}
		return StepResult{
			Next: repository.StateCollectingMobility,
			Replies: []string{m.render(sess, langtable.KeyMobilityPrompt, map[string]string{
				"temperature": formatVital(value),
			})},
			StoredVital: repository.VitalTemperature,
			StoredValue: value,
		}, nil

	case repository.StateCollectingMobility:
		if !ok || value < scoring.ScaleMin || value > scoring.ScaleMax {
			return m.repromptScale(sess), nil
		}
		return m.completeVitals(sess, value, now)

	default:
		return StepResult{}, fmt.Errorf("state %q is not a collecting state", sess.State)
	}
}

// completeVitals folds the three captured values with the mobility
// answer into one full round. Missing captures mean the session state
// went inconsistent, which aborts the round instead of guessing.
func (m *Machine) completeVitals(sess *repository.Session, mobility float64, now time.Time) (StepResult, error) {
	pain, okPain := sess.PendingVitals[repository.VitalPain]
	wound, okWound := sess.PendingVitals[repository.VitalWound]
	temp, okTemp := sess.PendingVitals[repository.VitalTemperature]
	if !okPain || !okWound || !okTemp {
		return StepResult{}, fmt.Errorf("vitals round incomplete in state %q", sess.State)
	}

	v, err := scoring.NewVitals(pain.Value, wound.Value, temp.Value, mobility, now)
	if err != nil {
		return StepResult{}, fmt.Errorf("stored vitals invalid: %w", err)
	}

	summary := m.render(sess, langtable.KeyVitalsSummary, map[string]string{
		"pain":        formatVital(v.Pain),
		"wound":       formatVital(v.WoundHealing),
		"temperature": formatVital(v.TemperatureC),
		"mobility":    formatVital(v.Mobility),
	})
	return StepResult{
		Next:            repository.StateFreeConversation,
		Replies:         []string{summary},
		StoredVital:     repository.VitalMobility,
		StoredValue:     mobility,
		CompletedVitals: &v,
	}, nil
}

func (m *Machine) stepFreeConversation(sess *repository.Session, text string) StepResult {
	if m.table.IsEmergencyPhrase(text) {
		return StepResult{
			Next:              repository.StateEmergencyMode,
			Replies:           []string{m.render(sess, langtable.KeyEmergencyDetected, nil)},
			EmergencyDetected: true,
		}
	}
	return StepResult{
		Next:     repository.StateFreeConversation,
		FreeText: text,
	}
}

func (m *Machine) repromptScale(sess *repository.Session) StepResult {
	return StepResult{
		Next: sess.State,
		Replies: []string{m.render(sess, langtable.KeyRepromptRange, map[string]string{
			"min": strconv.Itoa(scoring.ScaleMin),
			"max": strconv.Itoa(scoring.ScaleMax),
		})},
	}
}

func (m *Machine) render(sess *repository.Session, key string, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	params["name"] = sess.PatientName
	return m.table.Render(key, params)
}

func formatVital(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
