package repository

import "errors"

var (
	// ErrSlotAlreadyVoted: у студента уже есть голос в этом слоте
	ErrSlotAlreadyVoted = errors.New("student already voted in this slot")
	// ErrStaleStatus: статус сессии изменился между чтением и записью
	ErrStaleStatus = errors.New("session status changed concurrently")
	ErrNoRows      = errors.New("no rows affected")
)

func messParam[T ~string](v *T) any {
	if v == nil || *v == "" {
		return nil
	}
	return string(*v)
}
