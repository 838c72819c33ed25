package chatserver

import "strings"

// unboundedArgs marks a verb descriptor's maxArgs as having no upper bound.
const unboundedArgs = -1

// verbHandler executes one verb's side effects and returns the text that
// follows "RESULT <VERB> " on success. reply reports whether any line
// should be sent at all: SAY never replies, win or lose.
type verbHandler func(srv *Server, s *Session, args []string) (result string, reply bool)

// verbSpec is the descriptor-table entry consulted by dispatch, in place of
// wrapping each handler individually (see spec's "decorator-style arity
// checking" note): arity is validated once, generically, before the
// handler ever runs.
type verbSpec struct {
	minArgs int
	maxArgs int // unboundedArgs for no upper bound
	handle  verbHandler
}

var verbTable = map[string]verbSpec{
	"REGISTER": {2, 2, handleRegister},
	"LOGIN":    {2, 2, handleLogin},
	"CREATE":   {1, 1, handleCreate},
	"JOIN":     {1, 1, handleJoin},
	"SAY":      {2, unboundedArgs, handleSay},
	"CHANNELS": {0, 0, handleChannels},
}

// dispatch tokenizes line, validates its arity against verbTable, runs the
// matching handler, and enqueues whatever reply results. An empty or
// whitespace-only line produces no reply and is not an error.
func (srv *Server) dispatch(s *Session, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	verb, args := fields[0], fields[1:]

	spec, ok := verbTable[verb]
	if !ok {
		s.enqueueReply("RESULT ERROR unknown message type")
		return
	}
	if len(args) < spec.minArgs {
		s.enqueueReply("RESULT " + verb + " ERROR not enough arguments")
		return
	}
	if spec.maxArgs != unboundedArgs && len(args) > spec.maxArgs {
		s.enqueueReply("RESULT " + verb + " ERROR too many arguments")
		return
	}

	result, reply := spec.handle(srv, s, args)
	if !reply {
		return
	}
	s.enqueueReply("RESULT " + verb + " " + result)
}

func handleRegister(srv *Server, s *Session, args []string) (string, bool) {
	ok := srv.Users.Register(args[0], args[1])
	return boolDigit(ok), true
}

// handleLogin refuses to bind a session that is already logged in, without
// even consulting the registry: this is a session-level guard, not an
// authorization failure, and it must not become a wrong-password oracle.
func handleLogin(srv *Server, s *Session, args []string) (string, bool) {
	if s.loggedInUser() != nil {
		return boolDigit(false), true
	}
	u := srv.Users.Find(args[0])
	if u == nil {
		return boolDigit(false), true
	}
	if !u.login(s, args[1]) {
		return boolDigit(false), true
	}
	s.bind(u)
	return boolDigit(true), true
}

func handleCreate(srv *Server, s *Session, args []string) (string, bool) {
	name := args[0]
	if s.loggedInUser() == nil {
		return name + " " + boolDigit(false), true
	}
	ok := srv.Channels.Create(name)
	return name + " " + boolDigit(ok), true
}

func handleJoin(srv *Server, s *Session, args []string) (string, bool) {
	name := args[0]
	u := s.loggedInUser()
	if u == nil {
		return name + " " + boolDigit(false), true
	}
	ch := srv.Channels.Find(name)
	if ch == nil {
		return name + " " + boolDigit(false), true
	}
	return name + " " + boolDigit(ch.addMember(u)), true
}

// handleSay never produces a reply, whether the broadcast happens or not:
// an unauthenticated sayer, an unknown channel, and a non-member are all
// silent no-ops, same as a successful SAY.
func handleSay(srv *Server, s *Session, args []string) (string, bool) {
	u := s.loggedInUser()
	if u == nil {
		return "", false
	}
	ch := srv.Channels.Find(args[0])
	if ch == nil || !ch.isMember(u) {
		return "", false
	}
	ch.broadcast(u, args[1:])
	return "", false
}

func handleChannels(srv *Server, s *Session, args []string) (string, bool) {
	return strings.Join(srv.Channels.ListNames(), ", "), true
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
