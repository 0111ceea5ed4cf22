package captivewebview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/omnissa-archive/captive-web-view/command"
)

// maxCommandBytes caps a POST body read so a runaway client can't exhaust
// memory.
const maxCommandBytes = 1 << 20

func (s *Server) router() http.Handler {
	get := http.HandlerFunc(s.serveFile)
	r := mux.NewRouter()
	r.PathPrefix("/").Handler(handlers.MethodHandler{
		http.MethodGet:  get,
		http.MethodHead: get,
		http.MethodPost: http.HandlerFunc(s.serveCommand),
	})
	if s.AccessLog == nil {
		return r
	}
	return handlers.LoggingHandler(s.AccessLog, r)
}

// serveFile is the GET half of the bridge. Paths with a directory
// component must start with one of the content roots' relative paths;
// everything else is forbidden. The basename is then resolved across all
// roots, the request path rewritten to the resolved path, and the file
// under the common ancestor served.
//
// A path without a directory component, like / or /favicon.ico, is a root
// resource: it skips the prefix check and resolves directly.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Path
	root := -1
	if slash := strings.LastIndexByte(requested, '/'); slash > 0 {
		effective := strings.TrimPrefix(requested, "/")
		found := false
		for i, relative := range s.relatives {
			if strings.HasPrefix(effective, relative) {
				root, found = i, true
				break
			}
		}
		if !found {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}
	resolved, err := s.Resolve(requested)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry := s.log().WithFields(logrus.Fields{
		"path": requested, "resolved": resolved, "root": root,
	})
	if root < 0 {
		entry.Debug("Root resource.")
	} else {
		entry.Info("Response path.")
	}
	r.URL.Path = "/" + resolved
	s.sendFile(w, r, resolved)
}

func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, resolved string) {
	f, err := os.Open(filepath.Join(s.ancestor, filepath.FromSlash(resolved)))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// serveCommand is the POST half of the bridge. The request path is
// ignored; the body is decoded as a JSON command object and dispatched.
func (s *Server) serveCommand(w http.ResponseWriter, r *http.Request) {
	entry := s.log().WithField("request", uuid.NewString())
	if r.ContentLength <= 0 {
		http.Error(w, "Empty request body", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
	if err != nil {
		entry.Errorf("Reading command body: %v.", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var cmd command.Object
	if err := json.Unmarshal(body, &cmd); err != nil {
		entry.Errorf("Command body isn't JSON: %v.", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entry.Debugf("Command object %s.", body)
	response, err := s.dispatch(command.NewContext(r.Context(), entry), cmd)
	if err != nil {
		entry.Errorf("Command handler failed: %v.", err)
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		entry.Errorf("Encoding command response: %v.", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entry.Debugf("Command response %s.", payload)
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// dispatch runs cmd through the handler chain. The first handler to return
// a response wins. A nil response with a nil error means the handler
// didn't recognise the command and the next one is tried; if none does,
// the response is the command itself marked failed.
//
// A handler error, or a handler panic, is returned to the caller: handler
// faults are loud, in contrast to the quiet "Unhandled." outcome.
func (s *Server) dispatch(ctx context.Context, cmd command.Object) (response command.Object, err error) {
	defer func() {
		if v := recover(); v != nil {
			response = nil
			err = fmt.Errorf("command handler panic: %v", v)
		}
	}()
	for _, handler := range s.handlers {
		response, err = handler.Handle(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if response != nil {
			break
		}
	}
	if response == nil {
		response = make(command.Object, len(cmd)+1)
		for key, value := range cmd {
			response[key] = value
		}
		response["failed"] = "Unhandled."
	}
	if _, failed := response["failed"]; !failed {
		if _, confirmed := response["confirm"]; !confirmed {
			response["confirm"] = strings.Join([]string{
				s.name(), "CaptiveWebView/" + Version, runtime.Version(),
			}, " ")
		}
	}
	return response, nil
}
