package sqlinline

const QCreateKVEntries = `--sql 3e9b2f6a-8d41-4c57-a0e2-6f1d9c3b7a54
create table if not exists kv_entries (
    key text primary key,
    value bytea not null,
    updated_at timestamptz not null default now()
);
`

const QSelectKVEntry = `--sql 0f6b8a52-3c1d-4e7f-9a20-5b8c7d6e4f31
select value
from kv_entries
where key = $1::text
limit 1;
`

const QUpsertKVEntry = `--sql 9a2c4e71-5b6d-4f80-8e13-2d7a9b0c6e58
insert into kv_entries (key, value, updated_at)
values ($1::text, $2::bytea, now())
on conflict (key) do update set
    value = excluded.value,
    updated_at = now();
`

const QDeleteKVEntry = `--sql c7d15e08-2f9a-4b36-b1c4-8e0a5d2f7b93
delete from kv_entries
where key = $1::text;
`
