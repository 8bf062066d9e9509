// Package domain defines the core entities of the task service (accounts and
// tasks), their validation rules, and the failure kinds shared by every layer.
package domain
