// Package models contains GORM persistence models for the catalog, production,
// cost plan and warning tables. Domain entities carry no ORM tags; each model
// file maps its rows to and from the domain types.
package models
