package domain

// Snapshot is the full persisted state: every account and every transaction.
type Snapshot struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Accounts:     make([]Account, len(s.Accounts)),
		Transactions: make([]Transaction, len(s.Transactions)),
	}
	copy(out.Accounts, s.Accounts)
	copy(out.Transactions, s.Transactions)
	return out
}

// IsEmpty reports whether the snapshot has no records.
func (s Snapshot) IsEmpty() bool {
	return len(s.Accounts) == 0 && len(s.Transactions) == 0
}

// ResolveAccount finds the account with id in accounts.
func ResolveAccount(accounts []Account, id string) (Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// AccountName resolves id to a display name, or UnknownAccountName when the
// account does not exist.
func AccountName(accounts []Account, id string) string {
	if a, ok := ResolveAccount(accounts, id); ok {
		return a.Name
	}
	return UnknownAccountName
}
