package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/werkbank/internal/config"
	"github.com/codefionn/werkbank/internal/launcher"
	"github.com/codefionn/werkbank/internal/logger"
	"github.com/codefionn/werkbank/internal/store"
	"github.com/codefionn/werkbank/internal/teams"
	"github.com/codefionn/werkbank/internal/update"
	"github.com/codefionn/werkbank/internal/websearch"
	"github.com/codefionn/werkbank/internal/workspace"
)

const authTokenLength = 32

// Server is the local HTTP backend the GUI shell talks to. It exposes
// the workspace filesystem, web search, launcher, and conversation store
// over a token-protected loopback API, plus a WebSocket feed for
// filesystem change events.
type Server struct {
	addr      string
	authToken string

	cfg     *config.Config
	st      *store.Store
	search  websearch.Provider
	checker *update.Checker
	hub     *Hub

	httpServer *http.Server

	watcherMu sync.Mutex
	watcher   *workspace.Watcher
	watchDone chan struct{}
}

// NewServer creates a new backend server
func NewServer(cfg *config.Config, st *store.Store, search websearch.Provider, checker *update.Checker) (*Server, error) {
	token, err := generateAuthToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}

	return &Server{
		addr:      fmt.Sprintf("localhost:%d", cfg.ServerPort),
		authToken: token,
		cfg:       cfg,
		st:        st,
		search:    search,
		checker:   checker,
		hub:       NewHub(),
	}, nil
}

// Start starts the server in the background
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go s.hub.Run()

	go func() {
		logger.Info("Backend server listening on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop stops the server and the file watcher
func (s *Server) Stop() error {
	logger.Info("Stopping backend server...")

	s.stopWatcher()
	s.hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// URL returns the server URL with auth token
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s/?token=%s", s.addr, s.authToken)
}

// Handler builds the route table. Split out from Start so tests can mount
// it on httptest servers.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.POST("/api/fs/read", s.auth(s.handleFSRead))
	router.POST("/api/fs/write", s.auth(s.handleFSWrite))
	router.POST("/api/fs/exists", s.auth(s.handleFSExists))
	router.POST("/api/fs/list", s.auth(s.handleFSList))
	router.POST("/api/fs/search", s.auth(s.handleFSSearch))
	router.POST("/api/fs/watch", s.auth(s.handleFSWatch))

	router.POST("/api/web/search", s.auth(s.handleWebSearch))
	router.POST("/api/web/fetch", s.auth(s.handleWebFetch))

	router.POST("/api/teams/send", s.auth(s.handleTeamsSend))

	router.POST("/api/editor/open", s.auth(s.handleEditorOpen))
	router.POST("/api/shell/run", s.auth(s.handleShellRun))
	router.GET("/api/assistant/status", s.auth(s.handleAssistantStatus))
	router.POST("/api/assistant/args", s.auth(s.handleAssistantArgs))

	router.GET("/api/update/check", s.auth(s.handleUpdateCheck))

	router.GET("/api/db/workspaces", s.auth(s.handleWorkspaceList))
	router.POST("/api/db/workspaces", s.auth(s.handleWorkspaceCreate))
	router.DELETE("/api/db/workspaces/:id", s.auth(s.handleWorkspaceDelete))
	router.GET("/api/db/workspaces/:id/conversations", s.auth(s.handleConversationList))
	router.POST("/api/db/conversations", s.auth(s.handleConversationCreate))
	router.PUT("/api/db/conversations/:id", s.auth(s.handleConversationRename))
	router.DELETE("/api/db/conversations/:id", s.auth(s.handleConversationDelete))
	router.GET("/api/db/conversations/:id/messages", s.auth(s.handleMessageList))
	router.POST("/api/db/messages", s.auth(s.handleMessageCreate))

	router.GET("/ws", s.auth(s.handleWebSocket))

	return router
}

// auth rejects requests that carry neither the token query parameter nor
// a matching bearer header.
func (s *Server) auth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := r.URL.Query().Get("token")
		if token == "" {
			header := r.Header.Get("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token != s.authToken {
			logger.Warn("Request rejected: invalid auth token for %s", r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, ps)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

type fsRequest struct {
	WorkspacePath string `json:"workspacePath"`
	Path          string `json:"path"`
	Content       string `json:"content,omitempty"`
	Query         string `json:"query,omitempty"`
}

func (s *Server) handleFSRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req fsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, workspace.NewAccessor(req.WorkspacePath).Read(req.Path))
}

func (s *Server) handleFSWrite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req fsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, workspace.NewAccessor(req.WorkspacePath).Write(req.Path, req.Content))
}

func (s *Server) handleFSExists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req fsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	exists := workspace.NewAccessor(req.WorkspacePath).Exists(req.Path)
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) handleFSList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req fsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, workspace.NewAccessor(req.WorkspacePath).List(req.Path))
}

func (s *Server) handleFSSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req fsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	results := workspace.Search(req.WorkspacePath, req.Query)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// handleFSWatch (re)binds the filesystem watcher to a workspace. Change
// events stream to all WebSocket clients; only one workspace is watched
// at a time.
func (s *Server) handleFSWatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req fsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	watcher, err := workspace.NewWatcher(req.WorkspacePath)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	s.watcherMu.Lock()
	s.stopWatcherLocked()
	s.watcher = watcher
	done := make(chan struct{})
	s.watchDone = done
	s.watcherMu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}
				s.hub.Broadcast(&EventMessage{Type: EventTypeFSChange, Data: event})
			case <-done:
				return
			}
		}
	}()

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) stopWatcher() {
	s.watcherMu.Lock()
	defer s.watcherMu.Unlock()
	s.stopWatcherLocked()
}

func (s *Server) stopWatcherLocked() {
	if s.watcher != nil {
		close(s.watchDone)
		_ = s.watcher.Close()
		s.watcher = nil
		s.watchDone = nil
	}
}

type webRequest struct {
	Query string `json:"query,omitempty"`
	URL   string `json:"url,omitempty"`
}

func (s *Server) handleWebSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req webRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.search.Search(r.Context(), req.Query))
}

func (s *Server) handleWebFetch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req webRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, websearch.Fetch(r.Context(), req.URL))
}

type teamsRequest struct {
	WebhookURL string `json:"webhookUrl"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

func (s *Server) handleTeamsSend(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req teamsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, teams.Send(r.Context(), req.WebhookURL, req.Title, req.Content))
}

type editorRequest struct {
	Path   string `json:"path"`
	Editor string `json:"editor,omitempty"`
}

func (s *Server) handleEditorOpen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req editorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	editor := req.Editor
	if editor == "" {
		editor = s.cfg.Editor
	}
	writeJSON(w, http.StatusOK, launcher.OpenInEditor(req.Path, editor))
}

type shellRequest struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd"`
}

func (s *Server) handleShellRun(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req shellRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, launcher.RunShell(r.Context(), req.Command, req.Cwd))
}

func (s *Server) handleAssistantStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	binary := s.cfg.AssistantBinary
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"binary":    binary,
		"installed": launcher.CheckInstalled(binary),
	})
}

type assistantArgsRequest struct {
	Prompt  string           `json:"prompt"`
	Options launcher.Options `json:"options"`
}

func (s *Server) handleAssistantArgs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req assistantArgsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cwd, args := launcher.ExecArgs(req.Prompt, req.Options)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"binary": s.cfg.AssistantBinary,
		"cwd":    cwd,
		"args":   args,
	})
}

func (s *Server) handleUpdateCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.checker.Check(r.Context()))
}

func (s *Server) handleWorkspaceList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	workspaces, err := s.st.Workspaces()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if workspaces == nil {
		workspaces = []store.Workspace{}
	}
	writeJSON(w, http.StatusOK, workspaces)
}

type workspaceCreateRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s *Server) handleWorkspaceCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req workspaceCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ws, err := s.st.CreateWorkspace(req.Name, req.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleWorkspaceDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.st.DeleteWorkspace(ps.ByName("id")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleConversationList(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	convs, err := s.st.Conversations(ps.ByName("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if convs == nil {
		convs = []store.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

type conversationCreateRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Title       string `json:"title"`
}

func (s *Server) handleConversationCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req conversationCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	conv, err := s.st.CreateConversation(req.WorkspaceID, req.Title)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

type conversationRenameRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleConversationRename(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req conversationRenameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.st.UpdateConversationTitle(ps.ByName("id"), req.Title); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleConversationDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.st.DeleteConversation(ps.ByName("id")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMessageList(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	msgs, err := s.st.Messages(ps.ByName("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleMessageCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req store.Message
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := s.st.CreateMessage(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// handleWebSocket upgrades the connection and attaches it to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Loopback only; the token is the gate
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade WebSocket: %v", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// generateAuthToken generates a random auth token
func generateAuthToken() (string, error) {
	bytes := make([]byte, authTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
