package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/cncview/interp"
)

// sessionRequest is sent by the editor on every change.
type sessionRequest struct {
	Seq  int64  `json:"seq"`
	Text string `json:"text"`
}

type sessionReply struct {
	Seq         int64                  `json:"seq"`
	Lines       []interp.AnnotatedLine `json:"lines"`
	Diagnostics []interp.Diagnostic    `json:"diagnostics"`
	Error       string                 `json:"error,omitempty"`

	gen uint64
}

// session is one live editor connection. Edits are debounced and each one
// starts a fresh pass; replies to edits that were superseded while being
// interpreted are dropped.
type session struct {
	ws       *websocket.Conn
	in       *interp.Interpreter
	debounce time.Duration
}

func (a *api) session(w http.ResponseWriter, req *http.Request) {
	ws, err := a.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Println("ERROR: upgrade:", err)
		return
	}
	defer ws.Close()

	s := &session{
		ws:       ws,
		in:       interp.New(a.lib, a.cfg.Interpreter),
		debounce: a.cfg.Debounce,
	}
	s.loop(req.Context())
}

func (s *session) readLoop(ctx context.Context, reqs chan<- sessionRequest, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("ERROR: read:", err)
			}
			return
		}
		var r sessionRequest
		err = json.Unmarshal(data, &r)
		if err != nil {
			log.Println("ERROR: parse:", err)
			continue
		}
		select {
		case reqs <- r:
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) loop(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reqs := make(chan sessionRequest)
	done := make(chan struct{})
	results := make(chan sessionReply)
	go s.readLoop(ctx, reqs, done)

	var (
		gen     uint64
		pending sessionRequest
		fire    <-chan time.Time
	)
	for {
		select {
		case <-done:
			return
		case r := <-reqs:
			gen++
			pending = r
			fire = time.After(s.debounce)
		case <-fire:
			fire = nil
			go s.interpret(ctx, gen, pending, results)
		case rep := <-results:
			if rep.gen != gen {
				// superseded
				continue
			}
			data, err := json.Marshal(rep)
			if err != nil {
				log.Printf("ERROR: marshal json: %+v", err)
				continue
			}
			err = s.ws.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				log.Println("ERROR: send:", err)
				return
			}
		}
	}
}

func (s *session) interpret(ctx context.Context, gen uint64, r sessionRequest, results chan<- sessionReply) {
	rep := sessionReply{Seq: r.Seq, gen: gen}
	res, err := s.in.ParseProgram(ctx, r.Text)
	if err != nil {
		rep.Error = err.Error()
	} else {
		rep.Lines = res.Lines
		rep.Diagnostics = res.Diagnostics
	}

	select {
	case results <- rep:
	case <-ctx.Done():
	}
}
