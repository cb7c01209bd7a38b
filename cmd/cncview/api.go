package main

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mastercactapus/cncview/config"
	"github.com/mastercactapus/cncview/flatten"
	"github.com/mastercactapus/cncview/interp"
	"github.com/mastercactapus/cncview/subprog"
)

type api struct {
	http.Handler
	cfg config.Config
	lib *subprog.Library

	// libDir is set when the library is a directory; program changes are
	// written back to it.
	libDir string

	sse      *sse.Server
	upgrader websocket.Upgrader
}

type libraryEvent struct {
	Op   string `json:"op"`
	Name string `json:"name"`
}

func newAPI(cfg config.Config, lib *subprog.Library) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		cfg:     cfg,
		lib:     lib,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if cfg.LibraryPath != "" {
		if info, err := os.Stat(cfg.LibraryPath); err == nil && info.IsDir() {
			a.libDir = cfg.LibraryPath
		}
	}

	r.HandleFunc("/api/annotate", a.annotate).Methods("POST")
	r.HandleFunc("/api/flatten", a.flatten).Methods("POST")
	r.HandleFunc("/api/programs", a.listPrograms).Methods("GET")
	r.HandleFunc("/api/programs/{name}", a.getProgram).Methods("GET")
	r.HandleFunc("/api/programs/{name}", a.putProgram).Methods("PUT")
	r.HandleFunc("/api/programs/{name}", a.deleteProgram).Methods("DELETE")
	r.HandleFunc("/ws", a.session)
	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

func (a *api) Close() { a.sse.Shutdown() }

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		log.Println("invalid path '" + name + "'")
		return false, ""
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

// programFile is the library file name of a program, with .spf added
// when name has no program extension.
func programFile(name string) string {
	if subprog.IsProgramFile(name) {
		return name
	}
	return name + ".spf"
}

func (a *api) notify(op, name string) {
	data, err := json.Marshal(libraryEvent{Op: op, Name: name})
	if err != nil {
		log.Printf("ERROR: marshal json: %+v", err)
		return
	}
	a.sse.SendMessage("/events/library", sse.SimpleMessage(string(data)))
}

func readProgram(w http.ResponseWriter, req *http.Request) (string, bool) {
	data, err := ioutil.ReadAll(req.Body)
	if err != nil {
		log.Printf("ERROR: read body: %+v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	if !utf8.Valid(data) {
		http.Error(w, interp.ErrInvalidInput.Error(), http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

func writeJSONResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (a *api) interpret(w http.ResponseWriter, req *http.Request) (*interp.Result, bool) {
	text, ok := readProgram(w, req)
	if !ok {
		return nil, false
	}
	res, err := interp.New(a.lib, a.cfg.Interpreter).ParseProgram(req.Context(), text)
	if err != nil {
		log.Printf("ERROR: interpret: %+v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return res, true
}

func (a *api) annotate(w http.ResponseWriter, req *http.Request) {
	res, ok := a.interpret(w, req)
	if !ok {
		return
	}
	writeJSONResponse(w, res)
}

func (a *api) flatten(w http.ResponseWriter, req *http.Request) {
	res, ok := a.interpret(w, req)
	if !ok {
		return
	}
	p, err := flatten.Flatten(res)
	if err != nil {
		log.Printf("ERROR: flatten: %+v", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, p.String())
}

func (a *api) listPrograms(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := a.lib.WriteJSON(w)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (a *api) getProgram(w http.ResponseWriter, req *http.Request) {
	p, ok := a.lib.Get(mux.Vars(req)["name"])
	if !ok {
		http.NotFound(w, req)
		return
	}
	writeJSONResponse(w, p)
}

func (a *api) putProgram(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	text, ok := readProgram(w, req)
	if !ok {
		return
	}

	if a.libDir != "" {
		ok, fileName := safePath(a.libDir, programFile(name))
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		err := ioutil.WriteFile(fileName, []byte(text), 0644)
		if err != nil {
			log.Printf("ERROR: write '%s': %+v", fileName, err)
			http.Error(w, err.Error(), 500)
			return
		}
	}

	a.lib.Put(subprog.Program{Name: name, Code: subprog.SplitLines(text)})
	a.notify("put", subprog.Key(name))
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deleteProgram(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	p, ok := a.lib.Get(name)
	if !ok {
		http.NotFound(w, req)
		return
	}

	if a.libDir != "" {
		ok, fileName := safePath(a.libDir, programFile(p.Name))
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		err := os.Remove(fileName)
		if err != nil && !os.IsNotExist(err) {
			log.Printf("ERROR: delete '%s': %+v", fileName, err)
			http.Error(w, err.Error(), 500)
			return
		}
	}

	a.lib.Delete(name)
	a.notify("delete", subprog.Key(name))
	w.WriteHeader(http.StatusNoContent)
}
