package core

import "github.com/dkeye/Office/internal/domain"

type memberSession struct {
	id   SessionID
	user *domain.User
	conn SignalConnection
}

func NewMemberSession(id SessionID, user *domain.User, conn SignalConnection) MemberSession {
	return &memberSession{id: id, user: user, conn: conn}
}

func (m *memberSession) ID() SessionID            { return m.id }
func (m *memberSession) User() *domain.User       { return m.user }
func (m *memberSession) Signal() SignalConnection { return m.conn }
