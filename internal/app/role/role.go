package role

import "strings"

type Role int

const (
	User    Role = iota // 0 - посетитель, пишет отзывы
	Manager             // 1 - менеджер CRM
	Admin               // 2 - администратор
)

func (r Role) String() string {
	switch r {
	case User:
		return "user"
	case Manager:
		return "manager"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	return r >= User && r <= Admin
}

// Parse accepts both the numeric and the textual form ("2", "admin").
func Parse(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "user":
		return User, true
	case "1", "manager":
		return Manager, true
	case "2", "admin":
		return Admin, true
	}
	return User, false
}

// Staff - роли, которым доступна CRM.
var Staff = []Role{Manager, Admin}

// Any - все авторизованные пользователи.
var Any = []Role{User, Manager, Admin}
