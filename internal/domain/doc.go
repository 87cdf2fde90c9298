// Package domain contains the core business entities of the literacy service:
// consonants, words, progress records, activities and their sessions, and
// accounts. It also holds the pure rules that operate on them, such as the
// activity session state machine and achievement evaluation, independent of
// storage or transport.
package domain
