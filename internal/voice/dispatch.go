package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/neboloop/callbridge/internal/crashlog"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/tools"
	"github.com/neboloop/callbridge/internal/voiceagent"
)

const unknownCall = "unknown"

// dispatch routes one agent control document.
func (s *Session) dispatch(ctx context.Context, sid string, msg voiceagent.Message) error {
	switch m := msg.(type) {
	case voiceagent.SpeechStarted:
		s.stats.bargeIns.Add(1)
		if err := s.phone.SendClear(sid); err != nil {
			return ioError(ctx, loopReceiver, err)
		}

	case voiceagent.Transcript:
		if s.buf.Append(m.Role, m.Content) {
			s.stats.transcripts.Add(1)
			s.log.Debug("conversation text", "role", m.Role, "content", m.Content)
		}

	case voiceagent.FunctionCallRequest:
		s.runFunctionCalls(ctx, m.Functions)

	case voiceagent.Notice:
		if m.Kind == voiceagent.TypeError {
			s.log.Error("agent error", "code", m.Code, "description", m.Text())
		} else {
			s.log.Warn("agent warning", "code", m.Code, "description", m.Text())
		}

	case voiceagent.Unhandled:
		s.log.Debug("agent message", "type", m.Kind)
	}
	return nil
}

// runFunctionCalls answers a batch off the receiver goroutine, so agent audio
// keeps flowing while the backend works. Calls within a batch run in order.
// Calls the agent service runs itself are left to it.
func (s *Session) runFunctionCalls(ctx context.Context, batch []voiceagent.FunctionCall) {
	calls := make([]voiceagent.FunctionCall, 0, len(batch))
	for _, call := range batch {
		if !call.RunsOnClient() {
			s.log.Debug("function call handled by agent service", "call_id", call.ID, "function", call.Name)
			continue
		}
		calls = append(calls, call)
	}
	if len(calls) == 0 {
		return
	}
	s.toolCalls.Add(1)
	go func() {
		defer s.toolCalls.Done()
		for _, call := range calls {
			if ctx.Err() != nil {
				return
			}
			s.answer(ctx, call)
		}
	}()
}

// answer runs one call and sends exactly one response for it.
func (s *Session) answer(ctx context.Context, call voiceagent.FunctionCall) {
	id, name := call.ID, call.Name
	pacing := s.opts.ResponsePacing

	res, err := s.execute(ctx, call)
	if err != nil {
		res = tools.Failed(err)
		pacing = s.opts.FallbackPacing
		if id == "" {
			id = unknownCall
		}
		if name == "" {
			name = unknownCall
		}
	}
	s.stats.toolCalls.Add(1)

	log := s.log.With("call_id", id, "function", name)
	if res.IsError {
		log.Warn("function call failed", "content", res.Content)
	} else {
		log.Info("function call answered", "content", res.Content)
	}

	doc, encErr := voiceagent.NewFunctionCallResponse(id, name, res.Content).Encode()
	if encErr != nil {
		log.Error("failed to encode function call response", logging.Err(encErr))
		return
	}
	if sendErr := s.agent.SendControl(ctx, doc, pacing); sendErr != nil {
		log.Warn("failed to send function call response", logging.Err(sendErr))
	}
}

// execute parses the call and runs it outside the frame lock. A returned error
// means the call could not be run and needs a fallback response.
func (s *Session) execute(ctx context.Context, call voiceagent.FunctionCall) (res tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			crashlog.LogPanic("voice", r, map[string]string{"call_id": call.ID, "function": call.Name})
			err = fmt.Errorf("%v", r)
		}
	}()

	if call.ID == "" || call.Name == "" {
		return tools.Result{}, errors.New("function call is missing its id or name")
	}
	args, err := call.ArgumentJSON()
	if err != nil {
		return tools.Result{}, err
	}
	return s.deps.Tools.Execute(ctx, call.Name, args), nil
}
