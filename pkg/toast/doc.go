// Package toast defines the toast notification model and the producer API
// application code uses to raise notifications.
//
// A toast is created by a producer, handed to a Notifier (normally a
// *store.Store) and owned by that Notifier until it is dismissed. The
// producer helpers mirror what dashboard code needs day to day:
//
//	func SaveRoom(n toast.Notifier, room Room) {
//	    if err := rooms.Save(room); err != nil {
//	        toast.Error(n, "Could not save room", toast.WithTitle("Rooms"))
//	        return
//	    }
//	    toast.Success(n, "Room saved")
//	}
//
// # Loading Toasts
//
// Loading returns the id of a persistent spinner toast. Showing another
// toast with the same id replaces it in place:
//
//	id, _ := toast.Loading(n, "Uploading menu...")
//	// ...
//	toast.Success(n, "Menu uploaded", toast.WithID(id))
//
// # Validation
//
// Input.Build rejects toasts without a message, with an unknown type, with a
// negative duration, or carrying both an explicit duration and a progress
// value. Rejections are *errors.Error values with a stable code.
package toast
