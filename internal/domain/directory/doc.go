// Package directory содержит каталог пользователей портала NextEdu.
//
// Store хранит студентов, преподавателей, заявки на регистрацию,
// объявления и журнал действий преподавателей. Состояние загружается
// и сохраняется целиком через порт SnapshotStore:
//
//	store := directory.NewStore(directory.Config{
//	    Snapshots:   repo,            // postgres, redis или memory
//	    Hasher:      security.NewBcryptHasher(bcrypt.DefaultCost),
//	    Synthesizer: academic.NewSynthesizer(),
//	})
//	seeded, err := store.Open(ctx)
//
// Если снимка нет, Open заполняет каталог начальными данными (Seed).
// Изменения накапливаются в памяти и сохраняются методом Flush
// (или сразу, в режиме WriteThrough).
package directory
