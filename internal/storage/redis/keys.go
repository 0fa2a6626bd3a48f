package redis

import "fmt"

// ledgerKey returns the key holding the whole ledger document
func ledgerKey(namespace string) string {
	return fmt.Sprintf("%s:ledger", namespace)
}

// ledgerMetaKey returns the hash holding bookkeeping about the last save
func ledgerMetaKey(namespace string) string {
	return fmt.Sprintf("%s:ledger:meta", namespace)
}
