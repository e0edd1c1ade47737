package auth

import "github.com/MalcoreHardcore698/authdemo/authapi"

// State is the session snapshot. User is non-nil only while authenticated.
type State struct {
	User            *authapi.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

type actionKind uint8

const (
	actSetLoading actionKind = iota + 1
	actSetUser
	actSetError
	actLogout
)

type action struct {
	kind    actionKind
	loading bool
	user    *authapi.User
	err     string
}

func setLoading(v bool) action { return action{kind: actSetLoading, loading: v} }

func setUser(u *authapi.User) action { return action{kind: actSetUser, user: u} }

func setError(msg string) action { return action{kind: actSetError, err: msg} }

func logoutAction() action { return action{kind: actLogout} }

func reduce(s State, a action) State {
	switch a.kind {
	case actSetLoading:
		s.IsLoading = a.loading
	case actSetUser:
		s.User = a.user
		s.IsAuthenticated = a.user != nil
		s.Error = ""
		s.IsLoading = false
	case actSetError:
		s.Error = a.err
		s.IsLoading = false
	case actLogout:
		s = State{}
	}
	return s
}
