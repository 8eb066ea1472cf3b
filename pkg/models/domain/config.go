package domain

import "fmt"

const DefaultAPIVersion = "60.0"

// Profile is a named Salesforce org connection.
type Profile struct {
	Name        string
	InstanceURL string
	AccessToken string
	APIVersion  string
}

func (p Profile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.InstanceURL)
}
