package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

// Canned replies for the scripted parts of the flow.
const (
	replyGreeting      = "Hey there! How are you feeling today?"
	replyAllGood       = "That's great to hear! Let me know if anything changes."
	replyAskSymptoms   = "I'm sorry to hear that. Can you tell me what symptoms you're experiencing?"
	replyNudge         = "If you're unsure, I can help you find the right doctor. Just say you're not satisfied."
	replyThanks        = "You're very welcome! I'm here if you need anything else."
	replyFlowDone      = "You can restart the chat anytime by saying 'hi'. Take care!"
	replyAdviceOffline = "I couldn't look that up right now. A general physician can help you figure out the next step."
)

// Dialogue drives the triage state machine over a session store.
type Dialogue struct {
	store   SessionStore
	advisor Advisor
	logger  *logging.Logger
}

// NewDialogue constructs the dialogue service.
func NewDialogue(store SessionStore, advisor Advisor, logger *logging.Logger) *Dialogue {
	if store == nil {
		panic("chat: session store required")
	}
	if advisor == nil {
		advisor = StaticAdvisor{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dialogue{store: store, advisor: advisor, logger: logger}
}

// stageHandler advances a session given the incoming message and returns the
// reply. Handlers mutate the session in place; Respond persists it.
type stageHandler func(d *Dialogue, ctx context.Context, sess *Session, message, normalized string) string

// transitions is the stage table; every stage the machine can be in has an
// entry here.
var transitions = map[Stage]stageHandler{
	StageIllnessCheck:     (*Dialogue).handleIllnessCheck,
	StageAskSymptoms:      (*Dialogue).handleAskSymptoms,
	StageSuggestCondition: (*Dialogue).handleSuggestCondition,
	StageRecommendDoctor:  (*Dialogue).handleRecommendDoctor,
}

// Respond processes one patient message for the session and returns the reply.
func (d *Dialogue) Respond(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", errors.New("chat: session id required")
	}
	normalized := strings.ToLower(strings.TrimSpace(message))

	sess, err := d.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		sess = &Session{Stage: StageIllnessCheck}
		if err := d.store.Put(ctx, sessionID, sess); err != nil {
			return "", err
		}
		return replyGreeting, nil
	}
	if err != nil {
		return "", err
	}

	// A greeting restarts the flow from any stage.
	if isGreeting(normalized) {
		sess.Stage = StageIllnessCheck
		sess.Symptoms = ""
		if err := d.store.Put(ctx, sessionID, sess); err != nil {
			return "", err
		}
		return replyGreeting, nil
	}

	if isThanks(normalized) {
		return replyThanks, nil
	}

	handler, ok := transitions[sess.Stage]
	if !ok {
		// Unknown stored stage, likely from an older deployment; restart.
		sess.Stage = StageIllnessCheck
		sess.Symptoms = ""
		if err := d.store.Put(ctx, sessionID, sess); err != nil {
			return "", err
		}
		return replyGreeting, nil
	}

	reply := handler(d, ctx, sess, message, normalized)
	if err := d.store.Put(ctx, sessionID, sess); err != nil {
		return "", fmt.Errorf("chat: persist session: %w", err)
	}
	return reply, nil
}

func (d *Dialogue) handleIllnessCheck(ctx context.Context, sess *Session, message, normalized string) string {
	if containsAny(normalized, "ill", "not well", "sick", "unwell") {
		sess.Stage = StageAskSymptoms
		return replyAskSymptoms
	}
	return replyAllGood
}

func (d *Dialogue) handleAskSymptoms(ctx context.Context, sess *Session, message, normalized string) string {
	sess.Symptoms = message
	sess.Stage = StageSuggestCondition

	reply, err := d.advisor.SuggestCondition(ctx, message)
	if err != nil {
		d.logger.Error("condition suggestion failed", "error", err)
		return replyAdviceOffline
	}
	return reply
}

func (d *Dialogue) handleSuggestCondition(ctx context.Context, sess *Session, message, normalized string) string {
	if !containsAny(normalized, "not satisfied", "don't think so", "not sure") {
		return replyNudge
	}
	symptoms := sess.Symptoms
	if symptoms == "" {
		symptoms = "general illness"
	}
	sess.Stage = StageRecommendDoctor

	reply, err := d.advisor.SuggestSpecialist(ctx, symptoms)
	if err != nil {
		d.logger.Error("specialist suggestion failed", "error", err)
		return replyAdviceOffline
	}
	return reply
}

func (d *Dialogue) handleRecommendDoctor(ctx context.Context, sess *Session, message, normalized string) string {
	return replyFlowDone
}

// isGreeting matches whole words so symptom text like "high fever" does not
// restart the flow.
func isGreeting(normalized string) bool {
	for _, word := range strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		switch word {
		case "hi", "hello", "hey":
			return true
		}
	}
	return false
}

func isThanks(normalized string) bool {
	return containsAny(normalized, "thank you", "thanks", "thankyou")
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
