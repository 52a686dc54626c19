package storage

// StorageInterface defines the contract for report storage backends. The
// filesystem backend is the primary store for persisted research reports;
// the Azure backend archives the same documents off-host when configured.
type StorageInterface interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
